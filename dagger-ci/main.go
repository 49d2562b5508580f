// CI pipeline for html2doc: tests, multi-arch binaries and container images.

package main

import (
	"context"
	"dagger/html2doc/internal/dagger"
	"fmt"
)

type Html2Doc struct{}

func (m *Html2Doc) GoBuildEnv(source *dagger.Directory) *dagger.Container {
	goCache := dag.CacheVolume("go")
	return dag.Container().
		From("golang:alpine").
		WithDirectory("/src", source).
		WithWorkdir("/src").
		WithEnvVariable("GOOS", "linux").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", goCache).
		WithExec([]string{"go", "mod", "download"})
}

// Test запускает тесты и vet
func (m *Html2Doc) Test(ctx context.Context, source *dagger.Directory) (string, error) {
	return m.GoBuildEnv(source).
		WithExec([]string{"go", "vet", "./..."}).
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}

// Docs генерирует описание типов нод и кодов ошибок
func (m *Html2Doc) Docs(source *dagger.Directory) *dagger.File {
	return m.GoBuildEnv(source).
		WithExec([]string{"go", "run", "./cmd/docsgen", "-out", "/build/html2doc.md"}).
		File("/build/html2doc.md")
}

func (m *Html2Doc) RuntimeEnv(platform dagger.Platform, appBin *dagger.File) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{
		Platform: platform,
	}).
		From("alpine").
		WithExec([]string{"apk", "add", "--no-cache", "curl"}).
		WithWorkdir("/app").
		WithFile("/app/html2doc", appBin).
		WithExposedPort(8080).
		WithExposedPort(2112).
		WithEntrypoint([]string{"/app/html2doc"}).
		WithDefaultArgs([]string{"serve"})
}

func (m *Html2Doc) Build(version string, source *dagger.Directory) []*dagger.Container {
	buildMatrix := []struct {
		Arch     string
		BinName  string
		Platform dagger.Platform
	}{
		{
			Arch:     "amd64",
			BinName:  "/build/html2doc-linux",
			Platform: dagger.Platform("linux/amd64"),
		},
		{
			Arch:     "arm64",
			BinName:  "/build/html2doc-linux-arm64",
			Platform: dagger.Platform("linux/arm64/v8"),
		},
	}

	var images []*dagger.Container
	for _, buildParam := range buildMatrix {
		builder := m.GoBuildEnv(source).
			WithEnvVariable("GOARCH", buildParam.Arch).
			WithExec([]string{"go", "build", "-o", buildParam.BinName, "-ldflags", fmt.Sprintf("-s -w -X main.version=%s", version), "./cmd/html2doc"})

		image := m.RuntimeEnv(buildParam.Platform, builder.File(buildParam.BinName)).
			WithLabel("org.opencontainers.image.source", "https://github.com/aisa-it/html2doc").
			WithAnnotation("org.opencontainers.image.source", "https://github.com/aisa-it/html2doc")
		images = append(images, image)
	}
	return images
}

func (m *Html2Doc) Publish(
	ctx context.Context,
	images []*dagger.Container,
	registrySecret *dagger.Secret,
	registryUser string,
	imageName string,
) (string, error) {
	return dag.Container().
		WithRegistryAuth("ghcr.io", registryUser, registrySecret).
		Publish(ctx, "ghcr.io/"+imageName, dagger.ContainerPublishOpts{PlatformVariants: images})
}

func (m *Html2Doc) Export(
	ctx context.Context,
	images []*dagger.Container,
	imageName string,
) (string, error) {
	return dag.Container().
		Export(ctx, imageName, dagger.ContainerExportOpts{PlatformVariants: images})
}

func (m *Html2Doc) BuildLocal(ctx context.Context, name string, source *dagger.Directory) (string, error) {
	return m.Export(ctx, m.Build("v0.1.0", source), name)
}

func (m *Html2Doc) BuildApp(ctx context.Context, version string, source *dagger.Directory,
	registrySecret *dagger.Secret,
	registryUser string,
	imageName string,
) error {
	if _, err := m.Test(ctx, source); err != nil {
		return err
	}

	images := m.Build(version, source)
	for _, tag := range []string{version, "latest"} {
		ref, err := m.Publish(ctx, images, registrySecret, registryUser, fmt.Sprintf("%s:%s", imageName, tag))
		if err != nil {
			return err
		}
		fmt.Println(ref)
	}
	return nil
}
