package geoloc

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFetchReturnsFix(t *testing.T) {
	p := Func(func(ctx context.Context) (Position, error) {
		return Position{Latitude: 50.088, Longitude: 14.420}, nil
	})
	pos, err := Fetch(context.Background(), p, time.Second)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if pos.Latitude != 50.088 || pos.Longitude != 14.420 {
		t.Errorf("pos = %+v", pos)
	}
}

func TestFetchTimesOut(t *testing.T) {
	p := Func(func(ctx context.Context) (Position, error) {
		<-ctx.Done()
		return Position{}, ctx.Err()
	})
	_, err := Fetch(context.Background(), p, 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestFetchPropagatesProviderError(t *testing.T) {
	denied := errors.New("permission denied")
	p := Func(func(ctx context.Context) (Position, error) {
		return Position{}, denied
	})
	_, err := Fetch(context.Background(), p, time.Second)
	if !errors.Is(err, denied) {
		t.Errorf("err = %v, want provider error", err)
	}
}

func TestReportedBlocksUntilFirstFix(t *testing.T) {
	r := NewReported()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.CurrentPosition(ctx); err == nil {
		t.Error("position before any report")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Report(Position{Latitude: 1, Longitude: 2})
	}()
	pos, err := r.CurrentPosition(context.Background())
	if err != nil {
		t.Fatalf("current position: %v", err)
	}
	if pos.Latitude != 1 || pos.Longitude != 2 {
		t.Errorf("pos = %+v", pos)
	}

	r.Report(Position{Latitude: 3, Longitude: 4})
	pos, _ = r.CurrentPosition(context.Background())
	if pos.Latitude != 3 {
		t.Errorf("stale fix returned: %+v", pos)
	}
}
