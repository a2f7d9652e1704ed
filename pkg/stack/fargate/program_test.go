package fargate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/require"

	"github.com/jumppad-labs/collector-stack/pkg/stack/stacktest"
)

const (
	testAPIKey  = "hc-api-key-1234"
	testRepoURL = "123456789.dkr.ecr.us-east-1.amazonaws.com/collector-4f1e2a"
	testDNSName = "lb-9a8b7c-123.us-east-1.elb.amazonaws.com"

	typeService     = "aws:ecs/service:Service"
	typeTaskDef     = "aws:ecs/taskDefinition:TaskDefinition"
	typeTargetGroup = "aws:lb/targetGroup:TargetGroup"
	typeImage       = "docker:index/image:Image"
	typeRole        = "aws:iam/role:Role"
	typePolicy      = "aws:iam/policy:Policy"

	invokeGetCredentials = "aws:ecr/getCredentials:getCredentials"
)

func arn(args pulumi.MockResourceArgs) string {
	return fmt.Sprintf("arn:aws:mock:us-east-1:123456789:%s/%s", args.TypeToken, args.Name)
}

func setupMocks(t *testing.T, decodedToken string) *stacktest.Mocks {
	return &stacktest.Mocks{
		Default: func(args pulumi.MockResourceArgs) resource.PropertyMap {
			return resource.NewPropertyMapFromMap(map[string]interface{}{
				"arn":  arn(args),
				"name": args.Name + "-7d6e",
			})
		},
		Outputs: map[string]stacktest.OutputsFunc{
			"aws:ecr/repository:Repository": func(args pulumi.MockResourceArgs) resource.PropertyMap {
				return resource.NewPropertyMapFromMap(map[string]interface{}{"repositoryUrl": testRepoURL})
			},
			"awsx:ec2:DefaultVpc": func(args pulumi.MockResourceArgs) resource.PropertyMap {
				return resource.NewPropertyMapFromMap(map[string]interface{}{
					"vpcId":            "vpc-0a1b2c",
					"publicSubnetIds":  []interface{}{"subnet-a", "subnet-b"},
					"privateSubnetIds": []interface{}{},
				})
			},
			"aws:lb/loadBalancer:LoadBalancer": func(args pulumi.MockResourceArgs) resource.PropertyMap {
				return resource.NewPropertyMapFromMap(map[string]interface{}{"dnsName": testDNSName})
			},
		},
		Calls: map[string]stacktest.CallFunc{
			invokeGetCredentials: func(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
				return resource.NewPropertyMapFromMap(map[string]interface{}{
					"authorizationToken": base64.StdEncoding.EncodeToString([]byte(decodedToken)),
					"proxyEndpoint":      "https://123456789.dkr.ecr.us-east-1.amazonaws.com",
					"registryId":         args.Args["registryId"].StringValue(),
					"id":                 args.Args["registryId"].StringValue(),
					"expiresAt":          "2026-10-15T00:00:00Z",
				}), nil
			},
			"aws:index/getRegion:getRegion": func(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
				return resource.NewPropertyMapFromMap(map[string]interface{}{
					"name":        "us-east-1",
					"id":          "us-east-1",
					"description": "US East (N. Virginia)",
					"endpoint":    "ec2.us-east-1.amazonaws.com",
				}), nil
			},
		},
	}
}

func runProgram(t *testing.T, m *stacktest.Mocks) {
	t.Helper()

	stacktest.SetAPIKey(t, testAPIKey)
	err := stacktest.Run(Program(Options{}), m)
	require.NoError(t, err)
}

func TestServiceBindsThreePortsToTargetGroup(t *testing.T) {
	m := setupMocks(t, "AWS:secret123")
	runProgram(t, m)

	svc := m.Resource(t, typeService, "collector")
	tg := m.Resource(t, typeTargetGroup, "lb")

	lbs := stacktest.Get(svc.Inputs, "loadBalancers").ArrayValue()
	require.Len(t, lbs, 3)

	ports := []float64{}
	for _, v := range lbs {
		o := stacktest.Unwrap(v).ObjectValue()
		ports = append(ports, stacktest.Get(o, "containerPort").NumberValue())

		require.Equal(t, arn(tg), stacktest.Get(o, "targetGroupArn").StringValue())
		require.Equal(t, "collector", stacktest.Get(o, "containerName").StringValue())
	}

	require.Equal(t, []float64{4317, 4318, 13133}, ports)
}

func TestServiceRunsThreeFargateTasks(t *testing.T) {
	m := setupMocks(t, "AWS:secret123")
	runProgram(t, m)

	svc := m.Resource(t, typeService, "collector")

	require.Equal(t, float64(3), stacktest.Get(svc.Inputs, "desiredCount").NumberValue())
	require.Equal(t, "FARGATE", stacktest.Get(svc.Inputs, "launchType").StringValue())
	require.Equal(t, "collector", stacktest.Get(svc.Inputs, "name").StringValue())
	require.True(t, stacktest.Get(svc.Inputs, "networkConfiguration", "assignPublicIp").BoolValue())
	require.Len(t, stacktest.Get(svc.Inputs, "networkConfiguration", "subnets").ArrayValue(), 2)
}

func TestTaskDefinitionMapsCollectorPorts(t *testing.T) {
	m := setupMocks(t, "AWS:secret123")
	runProgram(t, m)

	td := m.Resource(t, typeTaskDef, "collector")
	require.Equal(t, "collector", stacktest.Get(td.Inputs, "family").StringValue())

	var defs []containerDefinition
	err := json.Unmarshal([]byte(stacktest.Get(td.Inputs, "containerDefinitions").StringValue()), &defs)
	require.NoError(t, err)

	require.Len(t, defs, 1)
	require.Equal(t, testRepoURL, defs[0].Image)
	require.Equal(t, 128, defs[0].CPU)
	require.Equal(t, 512, defs[0].Memory)
	require.True(t, defs[0].Essential)
	require.Equal(t, []keyValuePair{{Name: "HONEYCOMB_API_KEY", Value: testAPIKey}}, defs[0].Environment)
	require.Len(t, defs[0].PortMappings, 3)

	for i, p := range []int{4317, 4318, 13133} {
		require.Equal(t, p, defs[0].PortMappings[i].ContainerPort)
		require.Equal(t, p, defs[0].PortMappings[i].HostPort)
	}
}

func TestTargetGroupHealthCheck(t *testing.T) {
	m := setupMocks(t, "AWS:secret123")
	runProgram(t, m)

	tg := m.Resource(t, typeTargetGroup, "lb")

	require.Equal(t, float64(4318), stacktest.Get(tg.Inputs, "port").NumberValue())
	require.Equal(t, "13133", stacktest.Get(tg.Inputs, "healthCheck", "port").StringValue())
	require.Equal(t, "/", stacktest.Get(tg.Inputs, "healthCheck", "path").StringValue())
}

func TestImageIsPushedWithDecodedCredentials(t *testing.T) {
	m := setupMocks(t, "AWS:secret123")
	runProgram(t, m)

	img := m.Resource(t, typeImage, "collector")

	require.Equal(t, testRepoURL, stacktest.Get(img.Inputs, "imageName").StringValue())
	require.Equal(t, testRepoURL, stacktest.Get(img.Inputs, "registry", "server").StringValue())
	require.Equal(t, "AWS", stacktest.Get(img.Inputs, "registry", "username").StringValue())
	require.Equal(t, "secret123", stacktest.Get(img.Inputs, "registry", "password").StringValue())
	require.Equal(t, "linux/amd64", stacktest.Get(img.Inputs, "build", "platform").StringValue())

	calls := m.Invokes(invokeGetCredentials)
	require.Len(t, calls, 1)
	require.Equal(t, "123456789", calls[0].Args["registryId"].StringValue())
}

func TestTokenWithoutSeparatorFailsDeployment(t *testing.T) {
	m := setupMocks(t, "AWSsecret123")

	stacktest.SetAPIKey(t, testAPIKey)
	err := stacktest.Run(Program(Options{}), m)
	require.Error(t, err)
	require.ErrorContains(t, err, "invalid credentials")
}

func TestPullRoleKeepsDeclaredPrincipal(t *testing.T) {
	m := setupMocks(t, "AWS:secret123")
	runProgram(t, m)

	role := m.Resource(t, typeRole, "ecrAccessRole")

	var trust policyDocument
	err := json.Unmarshal([]byte(stacktest.Get(role.Inputs, "assumeRolePolicy").StringValue()), &trust)
	require.NoError(t, err)
	require.Equal(t, "build.apprunner.amazonaws.com", trust.Statement[0].Principal["Service"])

	policy := m.Resource(t, typePolicy, "pullImagePolicy")

	var pull policyDocument
	err = json.Unmarshal([]byte(stacktest.Get(policy.Inputs, "policy").StringValue()), &pull)
	require.NoError(t, err)
	require.ElementsMatch(t, ecrPullActions, pull.Statement[0].Action)
	require.Equal(t, "*", pull.Statement[0].Resource)
}

func TestDeclareReturnsContainerURL(t *testing.T) {
	m := setupMocks(t, "AWS:secret123")
	stacktest.SetAPIKey(t, testAPIKey)

	var url interface{}
	err := stacktest.Run(func(ctx *pulumi.Context) error {
		c, err := Declare(ctx, Options{})
		if err != nil {
			return err
		}

		stacktest.Capture(c.URL, &url)
		return nil
	}, m)
	require.NoError(t, err)

	require.Equal(t, "http://"+testDNSName+"/v1/trace", url)
}

func TestMissingAPIKeyFailsBeforeDeclaringResources(t *testing.T) {
	m := setupMocks(t, "AWS:secret123")
	t.Setenv("PULUMI_CONFIG", "{}")

	err := stacktest.Run(Program(Options{}), m)
	require.ErrorContains(t, err, "honeycomb-api-key")

	require.Empty(t, m.All())
}

func TestDeclarationsAreDeterministic(t *testing.T) {
	first := setupMocks(t, "AWS:secret123")
	runProgram(t, first)

	second := setupMocks(t, "AWS:secret123")
	runProgram(t, second)

	k1, in1 := first.Declared()
	k2, in2 := second.Declared()
	require.Equal(t, k1, k2)

	for _, k := range k1 {
		require.True(t, in1[k].DeepEquals(in2[k]), fmt.Sprintf("inputs for %s differ", k))
	}
}

func TestRegistryCredentialsAndDefinitionsAreSecret(t *testing.T) {
	m := setupMocks(t, "AWS:secret123")
	runProgram(t, m)

	img := m.Resource(t, typeImage, "collector")
	require.True(t, stacktest.Secret(img.Inputs, "registry", "username"))
	require.True(t, stacktest.Secret(img.Inputs, "registry", "password"))
	require.False(t, stacktest.Secret(img.Inputs, "registry", "server"))

	td := m.Resource(t, typeTaskDef, "collector")
	require.True(t, stacktest.Secret(td.Inputs, "containerDefinitions"))
}
