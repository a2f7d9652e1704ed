package main

import (
	"context"
	"fmt"
)

var oses = []string{"linux", "darwin", "windows"}
var arches = []string{"amd64", "arm64"}

// infra programs are built on their own as the engine CLI runs them directly
var programs = []string{"infra/aca", "infra/fargate"}

func New() *CollectorStackCI {
	return &CollectorStackCI{}
}

type CollectorStackCI struct {
	lastError     error
	goCacheVolume *CacheVolume
}

func (d *CollectorStackCI) All(ctx context.Context, src *Directory) (*Directory, error) {
	src = src.
		WithoutDirectory(".dagger").
		WithoutDirectory(".git").
		WithoutDirectory("output")

	// unit test
	d.UnitTest(ctx, src, true)

	// the stacks push this image, fail early when it does not build
	d.CollectorImage(ctx, src)

	// build for all achitectures and get the build outputs
	return d.Build(ctx, src)
}

func (d *CollectorStackCI) Build(ctx context.Context, src *Directory) (*Directory, error) {
	if d.hasError() {
		return nil, d.lastError
	}

	fmt.Println("Building...")

	// create empty directory to put build outputs
	outputs := dag.Directory()

	golang := d.golang(src)

	for _, goos := range oses {
		for _, goarch := range arches {
			fmt.Println("Build for", goos, goarch, "...")

			// create a directory for each os and arch
			path := fmt.Sprintf("build/%s/%s/", goos, goarch)

			// set GOARCH and GOOS in the build environment
			build, err := golang.
				WithEnvVariable("CGO_ENABLED", "0").
				WithEnvVariable("GOOS", goos).
				WithEnvVariable("GOARCH", goarch).
				WithExec([]string{"go", "build", "-o", path + "collector-stack"}).
				Sync(ctx)

			if err != nil {
				d.lastError = err
				return nil, err
			}

			// get reference to build output directory in container
			outputs = outputs.WithDirectory(path, build.Directory(path))
		}
	}

	for _, p := range programs {
		_, err := golang.
			WithExec([]string{"go", "build", "-o", "/dev/null", "./" + p}).
			Sync(ctx)

		if err != nil {
			d.lastError = fmt.Errorf("unable to build %s: %w", p, err)
			return nil, d.lastError
		}
	}

	return outputs, nil
}

func (d *CollectorStackCI) UnitTest(ctx context.Context, src *Directory, withRace bool) error {
	if d.hasError() {
		return d.lastError
	}

	cmd := []string{"go", "test", "-v", "./..."}
	if withRace {
		cmd = []string{"go", "test", "-v", "-race", "./..."}
	}

	_, err := d.golang(src).WithExec(cmd).Sync(ctx)
	if err != nil {
		d.lastError = err
	}

	return err
}

// CollectorImage builds the collector image from docker-collector
func (d *CollectorStackCI) CollectorImage(ctx context.Context, src *Directory) (*Container, error) {
	if d.hasError() {
		return nil, d.lastError
	}

	c, err := src.Directory("docker-collector").DockerBuild().Sync(ctx)
	if err != nil {
		d.lastError = fmt.Errorf("unable to build collector image: %w", err)
		return nil, d.lastError
	}

	return c, nil
}

func (d *CollectorStackCI) WithGoCache(cache *CacheVolume) *CollectorStackCI {
	d.goCacheVolume = cache
	return d
}

func (d *CollectorStackCI) golang(src *Directory) *Container {
	return dag.Container().
		From("golang:latest").
		WithDirectory("/src", src).
		WithWorkdir("/src").
		WithMountedCache("/go/pkg/mod", d.goCache())
}

func (d *CollectorStackCI) goCache() *CacheVolume {
	if d.goCacheVolume == nil {
		d.goCacheVolume = dag.CacheVolume("go-cache")
	}

	return d.goCacheVolume
}

func (d *CollectorStackCI) hasError() bool {
	return d.lastError != nil
}
