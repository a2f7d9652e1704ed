package main

import (
	"os"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/jumppad-labs/collector-stack/pkg/clients/logger"
	"github.com/jumppad-labs/collector-stack/pkg/stack/fargate"
)

func main() {
	lev := os.Getenv("LOG_LEVEL")
	if lev == "" {
		lev = logger.LogLevelInfo
	}

	l := logger.NewLogger(os.Stderr, lev)

	pulumi.Run(fargate.Program(fargate.Options{Logger: logger.LoggerAsHCLogger(l)}))
}
