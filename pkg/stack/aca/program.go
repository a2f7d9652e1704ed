// Package aca declares the collector on Azure Container Apps.
package aca

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	app "github.com/pulumi/pulumi-azure-native-sdk/app/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/containerregistry/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/resources/v2"
	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/jumppad-labs/collector-stack/pkg/collector"
	"github.com/jumppad-labs/collector-stack/pkg/credentials"
	"github.com/jumppad-labs/collector-stack/pkg/secret"
)

const (
	// OutputURL is the only value exported by the stack
	OutputURL = "collector-url"

	SecretAPIKey           = "honeycomb-api-key"
	SecretRegistryPassword = "registry-pwd"

	imageRepository = "securecollector"
	imageTag        = "latest"
)

// Options configures the program
type Options struct {
	// BuildContext is the docker build context of the collector image
	BuildContext string
	Logger       hclog.Logger
}

// Program returns the Pulumi program declaring the Azure resources
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
	App *app.ContainerApp
	// URL is the FQDN of the latest revision
	URL pulumi.StringOutput
}

// Declare adds the collector resources to ctx
func Declare(ctx *pulumi.Context, o Options) (*Collector, error) {
	if o.BuildContext == "" {
		o.BuildContext = collector.DefaultBuildContext
	}

	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}

	l := o.Logger.Named("aca")

	cfg := config.New(ctx, "")
	apiKey, err := cfg.TrySecret(collector.APIKeyConfig)
	if err != nil {
		return nil, &collector.MissingConfigError{Key: collector.APIKeyConfig, Err: err}
	}

	l.Debug("Declaring resource group", "name", "secure-collector")
	rg, err := resources.NewResourceGroup(ctx, "secure-collector", nil)
	if err != nil {
		return nil, fmt.Errorf("unable to declare resource group: %w", err)
	}

	l.Debug("Declaring container registry", "name", "securecollector")
	registry, err := containerregistry.NewRegistry(ctx, "securecollector", &containerregistry.RegistryArgs{
		AdminUserEnabled:  pulumi.Bool(true),
		ResourceGroupName: rg.Name,
		Sku: &containerregistry.SkuArgs{
			Name: pulumi.String("Basic"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare container registry: %w", err)
	}

	resolver := credentials.NewACRResolver(&invokeLister{ctx: ctx})

	creds := pulumi.All(rg.Name, registry.Name, registry.LoginServer).ApplyT(
		func(args []interface{}) (credentials.Credentials, error) {
			r := credentials.Registry{
				ResourceGroup: args[0].(string),
				Name:          args[1].(string),
				Server:        args[2].(string),
			}

			l.Debug("Resolving registry credentials", "registry", r.Name)
			return resolver.Resolve(r)
		},
	).(pulumi.AnyOutput)

	adminUsername := credentials.SecretOutput(creds, func(c credentials.Credentials) secret.Value { return c.Username })
	adminPassword := credentials.SecretOutput(creds, func(c credentials.Credentials) secret.Value { return c.Password })

	imageName := registry.LoginServer.ApplyT(func(server string) (string, error) {
		return collector.ImageName(fmt.Sprintf("%s/%s", server, imageRepository), imageTag)
	}).(pulumi.StringOutput)

	l.Debug("Declaring image", "name", "collector-image", "context", o.BuildContext)
	image, err := docker.NewImage(ctx, "collector-image", &docker.ImageArgs{
		ImageName: imageName,
		Build: &docker.DockerBuildArgs{
			Context: pulumi.String(o.BuildContext),
		},
		Registry: docker.RegistryArgs{
			Server:   registry.LoginServer,
			Username: adminUsername,
			Password: adminPassword,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare image: %w", err)
	}

	apiKeySecret := app.SecretArgs{
		Name:  pulumi.String(SecretAPIKey),
		Value: apiKey,
	}

	registryPasswordSecret := app.SecretArgs{
		Name:  pulumi.String(SecretRegistryPassword),
		Value: adminPassword,
	}

	l.Debug("Declaring managed environment", "name", "collector-env")
	env, err := app.NewManagedEnvironment(ctx, "collector-env", &app.ManagedEnvironmentArgs{
		ResourceGroupName: rg.Name,
		AppLogsConfiguration: &app.AppLogsConfigurationArgs{
			Destination: pulumi.String(""),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare managed environment: %w", err)
	}

	l.Debug("Declaring container app", "name", collector.ContainerName)
	ca, err := app.NewContainerApp(ctx, collector.ContainerName, &app.ContainerAppArgs{
		EnvironmentId:     env.ID(),
		ResourceGroupName: rg.Name,
		ContainerAppName:  pulumi.String(collector.ContainerName),
		Configuration: &app.ConfigurationArgs{
			Ingress: &app.IngressArgs{
				External:   pulumi.Bool(true),
				TargetPort: pulumi.Int(collector.PortOTLPHTTP),
			},
			Secrets: app.SecretArray{
				apiKeySecret,
				registryPasswordSecret,
			},
			// secrets are passed by name, the platform resolves them at runtime
			Registries: app.RegistryCredentialsArray{
				app.RegistryCredentialsArgs{
					Server:            registry.LoginServer,
					Username:          adminUsername,
					PasswordSecretRef: pulumi.String(SecretRegistryPassword),
				},
			},
		},
		Template: &app.TemplateArgs{
			Scale: &app.ScaleArgs{
				MinReplicas: pulumi.Int(1),
				MaxReplicas: pulumi.Int(1),
			},
			Containers: app.ContainerArray{
				app.ContainerArgs{
					Name:  pulumi.String(collector.ContainerName),
					Image: image.ImageName,
					Env: app.EnvironmentVarArray{
						app.EnvironmentVarArgs{
							Name:      pulumi.String(collector.APIKeyEnv),
							SecretRef: pulumi.String(SecretAPIKey),
						},
					},
					Probes: app.ContainerAppProbeArray{
						healthProbe("Readiness"),
						healthProbe("Liveness"),
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to declare container app: %w", err)
	}

	return &Collector{App: ca, URL: ca.LatestRevisionFqdn}, nil
}

func healthProbe(probeType string) app.ContainerAppProbeArgs {
	return app.ContainerAppProbeArgs{
		HttpGet: &app.ContainerAppProbeHttpGetArgs{
			Path: pulumi.String(collector.HealthCheckPath),
			Port: pulumi.Int(collector.PortHealthCheck),
		},
		Type: pulumi.String(probeType),
	}
}

// invokeLister lists the admin credentials through the provider
type invokeLister struct {
	ctx *pulumi.Context
}

func (i *invokeLister) ListCredentials(resourceGroup, registry string) (credentials.AdminCredentials, error) {
	res, err := containerregistry.ListRegistryCredentials(i.ctx, &containerregistry.ListRegistryCredentialsArgs{
		ResourceGroupName: resourceGroup,
		RegistryName:      registry,
	})
	if err != nil {
		return credentials.AdminCredentials{}, err
	}

	ac := credentials.AdminCredentials{Username: res.Username}
	for _, p := range res.Passwords {
		if p.Value == nil {
			continue
		}

		ac.Passwords = append(ac.Passwords, secret.New(*p.Value))
	}

	return ac, nil
}
