package credentials

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/jumppad-labs/collector-stack/pkg/secret"
)

// SecretOutput projects one field of the resolved credentials held by creds
// as a secret string output
func SecretOutput(creds pulumi.AnyOutput, field func(Credentials) secret.Value) pulumi.StringOutput {
	out := creds.ApplyT(func(v interface{}) string {
		return field(v.(Credentials)).Reveal()
	}).(pulumi.StringOutput)

	return pulumi.ToSecret(out).(pulumi.StringOutput)
}
