// Package fargate declares the collector as an ECS Fargate service behind an
// application load balancer.
package fargate

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	awsec2 "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ecr"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ecs"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lb"
	"github.com/pulumi/pulumi-awsx/sdk/v2/go/awsx/ec2"
	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/jumppad-labs/collector-stack/pkg/collector"
	"github.com/jumppad-labs/collector-stack/pkg/credentials"
	"github.com/jumppad-labs/collector-stack/pkg/secret"
)

const (
	// OutputURL is the only value exported by the stack
	OutputURL = "containerUrl"

	// DesiredCount is the number of collector tasks
	DesiredCount = 3

	listenerPort = 80
	tracePath    = "/v1/trace"

	// ecrAccessPrincipal is the trust principal of the ECR pull role
	ecrAccessPrincipal = "build.apprunner.amazonaws.com"

	executionPolicyArn = "arn:aws:iam::aws:policy/service-role/AmazonECSTaskExecutionRolePolicy"
)

// Options configures the program
type Options struct {
	// BuildContext is the docker build context of the collector image
	BuildContext string
	// Platform the image is built for, defaults to linux/amd64
	Platform string
	Logger   hclog.Logger
}

// Program returns the Pulumi program declaring the AWS resources
func Program(o Options) pulumi.RunFunc {
	return func(ctx *pulumi.Context) error {
		c, err := Declare(ctx, o)
		if err != nil {
			return err
		}

		ctx.Export(OutputURL, c.URL)
		return nil
	}
}

// Collector is the result of declaring the stack
type Collector struct {
	Service     *ecs.Service
	TargetGroup *lb.TargetGroup
	// URL is the public trace endpoint on the load balancer
	URL pulumi.StringOutput
}

// Declare adds the collector resources to ctx
func Declare(ctx *pulumi.Context, o Options) (*Collector, error) {
	if o.BuildContext == "" {
		o.BuildContext = collector.DefaultBuildContext
	}

	if o.Platform == "" {
		o.Platform = "linux/amd64"
	}

	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}

	l := o.Logger.Named("fargate")

	cfg := config.New(ctx, "")
	apiKey, err := cfg.TrySecret(collector.APIKeyConfig)
	if err != nil {
		return nil, &collector.MissingConfigError{Key: collector.APIKeyConfig, Err: err}
	}

	l.Debug("Declaring repository", "name", "collector")
	repo, err := ecr.NewRepository(ctx, "collector", &ecr.RepositoryArgs{
		ForceDelete: pulumi.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare repository: %w", err)
	}

	resolver := credentials.NewECRResolver(&invokeFetcher{ctx: ctx})

	registryInfo := repo.RepositoryUrl.ApplyT(func(url string) (credentials.Credentials, error) {
		l.Debug("Resolving registry credentials", "repository", url)
		return resolver.Resolve(credentials.Registry{Server: url})
	}).(pulumi.AnyOutput)

	imageName := repo.RepositoryUrl.ApplyT(func(url string) (string, error) {
		return collector.ImageName(url, "")
	}).(pulumi.StringOutput)

	l.Debug("Declaring image", "name", "collector", "context", o.BuildContext)
	image, err := docker.NewImage(ctx, "collector", &docker.ImageArgs{
		ImageName: imageName,
		Build: &docker.DockerBuildArgs{
			Context:  pulumi.String(o.BuildContext),
			Platform: pulumi.String(o.Platform),
		},
		Registry: docker.RegistryArgs{
			Server:   repo.RepositoryUrl,
			Username: credentials.SecretOutput(registryInfo, func(c credentials.Credentials) secret.Value { return c.Username }),
			Password: credentials.SecretOutput(registryInfo, func(c credentials.Credentials) secret.Value { return c.Password }),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare image: %w", err)
	}

	if err := declarePullRole(ctx, l); err != nil {
		return nil, err
	}

	l.Debug("Declaring cluster", "name", "collector")
	cluster, err := ecs.NewCluster(ctx, "collector", nil)
	if err != nil {
		return nil, fmt.Errorf("unable to declare cluster: %w", err)
	}

	net, err := declareNetwork(ctx, l)
	if err != nil {
		return nil, err
	}

	td, err := declareTask(ctx, l, image.ImageName, apiKey)
	if err != nil {
		return nil, err
	}

	lbs := ecs.ServiceLoadBalancerArray{}
	for _, p := range collector.Ports() {
		lbs = append(lbs, ecs.ServiceLoadBalancerArgs{
			TargetGroupArn: net.targetGroup.Arn,
			ContainerName:  pulumi.String(collector.ContainerName),
			ContainerPort:  pulumi.Int(p.Number),
		})
	}

	l.Debug("Declaring service", "name", collector.ContainerName, "desired_count", DesiredCount)
	svc, err := ecs.NewService(ctx, collector.ContainerName, &ecs.ServiceArgs{
		Cluster:        cluster.Arn,
		Name:           pulumi.String(collector.ContainerName),
		DesiredCount:   pulumi.Int(DesiredCount),
		LaunchType:     pulumi.String("FARGATE"),
		TaskDefinition: td.Arn,
		NetworkConfiguration: &ecs.ServiceNetworkConfigurationArgs{
			AssignPublicIp: pulumi.Bool(true),
			Subnets:        net.subnets,
			SecurityGroups: pulumi.StringArray{net.securityGroup.ID()},
		},
		LoadBalancers: lbs,
	}, pulumi.DependsOn([]pulumi.Resource{net.listener}))
	if err != nil {
		return nil, fmt.Errorf("unable to declare service: %w", err)
	}

	return &Collector{
		Service:     svc,
		TargetGroup: net.targetGroup,
		URL:         pulumi.Sprintf("http://%s%s", net.loadBalancer.DnsName, tracePath),
	}, nil
}

// declarePullRole declares the role allowed to pull the collector image
func declarePullRole(ctx *pulumi.Context, l hclog.Logger) error {
	trust, err := assumeRolePolicy(ecrAccessPrincipal)
	if err != nil {
		return err
	}

	l.Debug("Declaring role", "name", "ecrAccessRole")
	role, err := iam.NewRole(ctx, "ecrAccessRole", &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(trust),
	})
	if err != nil {
		return fmt.Errorf("unable to declare ecr access role: %w", err)
	}

	pull, err := pullImagePolicy()
	if err != nil {
		return err
	}

	policy, err := iam.NewPolicy(ctx, "pullImagePolicy", &iam.PolicyArgs{
		Policy: pulumi.String(pull),
	})
	if err != nil {
		return fmt.Errorf("unable to declare pull image policy: %w", err)
	}

	_, err = iam.NewRolePolicyAttachment(ctx, "pullImageRolePolicy", &iam.RolePolicyAttachmentArgs{
		Role:      role.Name,
		PolicyArn: policy.Arn,
	})
	if err != nil {
		return fmt.Errorf("unable to attach pull image policy: %w", err)
	}

	return nil
}

type network struct {
	subnets       pulumi.StringArrayOutput
	securityGroup *awsec2.SecurityGroup
	loadBalancer  *lb.LoadBalancer
	targetGroup   *lb.TargetGroup
	listener      *lb.Listener
}

// declareNetwork declares the load balancer in the default VPC, traffic
// enters on port 80 and is forwarded to the OTLP HTTP port
func declareNetwork(ctx *pulumi.Context, l hclog.Logger) (*network, error) {
	vpc, err := ec2.NewDefaultVpc(ctx, "default", nil)
	if err != nil {
		return nil, fmt.Errorf("unable to lookup default vpc: %w", err)
	}

	l.Debug("Declaring security group", "name", "lb")
	sg, err := awsec2.NewSecurityGroup(ctx, "lb", &awsec2.SecurityGroupArgs{
		VpcId: vpc.VpcId,
		Ingress: awsec2.SecurityGroupIngressArray{
			awsec2.SecurityGroupIngressArgs{
				Protocol:   pulumi.String("tcp"),
				FromPort:   pulumi.Int(listenerPort),
				ToPort:     pulumi.Int(listenerPort),
				CidrBlocks: pulumi.StringArray{pulumi.String("0.0.0.0/0")},
			},
			awsec2.SecurityGroupIngressArgs{
				Protocol: pulumi.String("-1"),
				FromPort: pulumi.Int(0),
				ToPort:   pulumi.Int(0),
				Self:     pulumi.Bool(true),
			},
		},
		Egress: awsec2.SecurityGroupEgressArray{
			awsec2.SecurityGroupEgressArgs{
				Protocol:   pulumi.String("-1"),
				FromPort:   pulumi.Int(0),
				ToPort:     pulumi.Int(0),
				CidrBlocks: pulumi.StringArray{pulumi.String("0.0.0.0/0")},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare security group: %w", err)
	}

	l.Debug("Declaring load balancer", "name", "lb")
	alb, err := lb.NewLoadBalancer(ctx, "lb", &lb.LoadBalancerArgs{
		LoadBalancerType: pulumi.String("application"),
		Subnets:          vpc.PublicSubnetIds,
		SecurityGroups:   pulumi.StringArray{sg.ID()},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare load balancer: %w", err)
	}

	tg, err := lb.NewTargetGroup(ctx, "lb", &lb.TargetGroupArgs{
		Port:       pulumi.Int(collector.PortOTLPHTTP),
		Protocol:   pulumi.String("HTTP"),
		TargetType: pulumi.String("ip"),
		VpcId:      vpc.VpcId,
		HealthCheck: &lb.TargetGroupHealthCheckArgs{
			Port: pulumi.String(fmt.Sprint(collector.PortHealthCheck)),
			Path: pulumi.String(collector.HealthCheckPath),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare target group: %w", err)
	}

	listener, err := lb.NewListener(ctx, "lb", &lb.ListenerArgs{
		LoadBalancerArn: alb.Arn,
		Port:            pulumi.Int(listenerPort),
		Protocol:        pulumi.String("HTTP"),
		DefaultActions: lb.ListenerDefaultActionArray{
			lb.ListenerDefaultActionArgs{
				Type:           pulumi.String("forward"),
				TargetGroupArn: tg.Arn,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare listener: %w", err)
	}

	return &network{
		subnets:       vpc.PublicSubnetIds,
		securityGroup: sg,
		loadBalancer:  alb,
		targetGroup:   tg,
		listener:      listener,
	}, nil
}

// declareTask declares the task definition and the roles and log group it needs
func declareTask(ctx *pulumi.Context, l hclog.Logger, image pulumi.StringOutput, apiKey pulumi.StringOutput) (*ecs.TaskDefinition, error) {
	trust, err := assumeRolePolicy("ecs-tasks.amazonaws.com")
	if err != nil {
		return nil, err
	}

	execRole, err := iam.NewRole(ctx, "collector-execution", &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(trust),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare task execution role: %w", err)
	}

	_, err = iam.NewRolePolicyAttachment(ctx, "collector-execution", &iam.RolePolicyAttachmentArgs{
		Role:      execRole.Name,
		PolicyArn: pulumi.String(executionPolicyArn),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to attach task execution policy: %w", err)
	}

	logs, err := cloudwatch.NewLogGroup(ctx, "collector", &cloudwatch.LogGroupArgs{
		RetentionInDays: pulumi.Int(7),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare log group: %w", err)
	}

	region, err := aws.GetRegion(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to determine region: %w", err)
	}

	// the api key is secret so the whole document is tracked as secret
	defs := pulumi.All(image, apiKey, logs.Name).ApplyT(func(args []interface{}) (string, error) {
		return containerDefinitions(taskParams{
			Image:    args[0].(string),
			APIKey:   secret.New(args[1].(string)),
			LogGroup: args[2].(string),
			Region:   region.Name,
		})
	}).(pulumi.StringOutput)

	l.Debug("Declaring task definition", "family", collector.ContainerName)
	td, err := ecs.NewTaskDefinition(ctx, collector.ContainerName, &ecs.TaskDefinitionArgs{
		Family:                  pulumi.String(collector.ContainerName),
		Cpu:                     pulumi.String(taskCPU),
		Memory:                  pulumi.String(taskMemory),
		NetworkMode:             pulumi.String("awsvpc"),
		RequiresCompatibilities: pulumi.StringArray{pulumi.String("FARGATE")},
		ExecutionRoleArn:        execRole.Arn,
		ContainerDefinitions:    defs,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare task definition: %w", err)
	}

	return td, nil
}

// invokeFetcher fetches ECR tokens through the provider
type invokeFetcher struct {
	ctx *pulumi.Context
}

func (i *invokeFetcher) FetchToken(registryID string) (credentials.ECRToken, error) {
	res, err := ecr.GetCredentials(i.ctx, &ecr.GetCredentialsArgs{RegistryId: registryID})
	if err != nil {
		return credentials.ECRToken{}, err
	}

	return credentials.ECRToken{
		AuthorizationToken: secret.New(res.AuthorizationToken),
		ProxyEndpoint:      res.ProxyEndpoint,
	}, nil
}
