package imagegen

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"server/internal/domain"
)

type fakeRemote struct {
	url   string
	err   error
	calls int
}

func (f *fakeRemote) Compose(ctx context.Context, req domain.CompositionRequest) (string, error) {
	f.calls++
	return f.url, f.err
}

type fakeLocal struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeLocal) ComposeLocal(ctx context.Context, sourceImageRef string, overlay OverlayText, accent color.RGBA) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func TestPipelineRemoteSuccessSkipsLocal(t *testing.T) {
	t.Parallel()
	remote := &fakeRemote{url: "https://cdn.example.com/hero.png"}
	local := &fakeLocal{data: []byte("unused")}
	p := NewPipeline(remote, local, nil)

	hero, err := p.Produce(context.Background(), domain.CompositionRequest{SourceImageRef: "s"}, OverlayText{})
	if err != nil {
		t.Fatalf("Produce returned error: %v", err)
	}
	if !hero.Remote() || hero.URL != remote.url {
		t.Fatalf("hero = %+v, want remote url", hero)
	}
	if local.calls != 0 {
		t.Fatalf("local calls = %d, want 0", local.calls)
	}
}

func TestPipelineRemoteFailureFallsBackOnce(t *testing.T) {
	t.Parallel()
	remote := &fakeRemote{err: domain.NewFailure(domain.FailureStatus, errors.New("503"))}
	local := &fakeLocal{data: []byte{0x89, 0x50}}
	p := NewPipeline(remote, local, nil)

	hero, err := p.Produce(context.Background(), domain.CompositionRequest{SourceImageRef: "s"}, OverlayText{Title: "t"})
	if err != nil {
		t.Fatalf("Produce returned error: %v", err)
	}
	if hero.Remote() {
		t.Fatal("expected raster payload, got remote url")
	}
	if len(hero.Data) == 0 {
		t.Fatal("raster payload is empty")
	}
	// Exactly one remote attempt and exactly one local render.
	if remote.calls != 1 {
		t.Fatalf("remote calls = %d, want 1", remote.calls)
	}
	if local.calls != 1 {
		t.Fatalf("local calls = %d, want 1", local.calls)
	}
}

func TestPipelineSurfacesSourceLoadFailure(t *testing.T) {
	t.Parallel()
	remote := &fakeRemote{err: domain.NewFailure(domain.FailureConfigMissing, errors.New("no key"))}
	local := &fakeLocal{err: domain.ErrSourceImageLoad}
	p := NewPipeline(remote, local, nil)

	_, err := p.Produce(context.Background(), domain.CompositionRequest{SourceImageRef: "gone"}, OverlayText{})
	if !errors.Is(err, domain.ErrSourceImageLoad) {
		t.Fatalf("error = %v, want ErrSourceImageLoad", err)
	}
}
