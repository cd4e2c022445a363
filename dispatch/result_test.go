package dispatch

import (
	"errors"
	"sync"
	"testing"
)

// Racing failure and success paths must resolve the Result exactly
// once; only the first report wins and the accessors all agree.
func TestResult_ExactlyOnce(t *testing.T) {
	t.Parallel()

	res := newResult()

	const racers = 32
	var wg sync.WaitGroup
	wg.Add(racers)

	for i := range racers {
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				res.fail(errors.New("race failure"), nil)
			} else {
				res.complete(Meta{"success": true}, []byte{0x01})
			}
		}()
	}

	wg.Wait()

	select {
	case <-res.Done():
	default:
		t.Fatal("result never resolved")
	}

	// Whichever racer won, the outcome is internally consistent.
	if res.Err() != nil {
		if res.Body() != nil {
			t.Error("failed result must not carry a body")
		}
	} else {
		if !res.Meta().OK() {
			t.Error("successful result must carry the success meta")
		}
		if len(res.Body()) != 1 {
			t.Errorf("successful result lost its body: %v", res.Body())
		}
	}

	// Further resolution attempts are no-ops.
	first := res.Err()
	res.fail(errors.New("late failure"), nil)
	res.complete(Meta{}, nil)
	if res.Err() != first {
		t.Errorf("result changed after resolution: %v -> %v", first, res.Err())
	}
}

func TestResult_FailKeepsMeta(t *testing.T) {
	t.Parallel()

	res := newResult()
	meta := Meta{"success": false, "message": "bad input"}
	res.fail(&RemoteError{Message: "bad input", Meta: meta}, meta)

	if res.Err() == nil {
		t.Fatal("expected error")
	}
	if res.Meta().Message() != "bad input" {
		t.Errorf("expected meta attached to failure, got %v", res.Meta())
	}
}

func TestFailed(t *testing.T) {
	t.Parallel()

	res := Failed(ErrSinkConflict)

	select {
	case <-res.Done():
	default:
		t.Fatal("Failed must return a resolved result")
	}
	if !errors.Is(res.Err(), ErrSinkConflict) {
		t.Errorf("expected ErrSinkConflict, got: %v", res.Err())
	}
}

func TestMeta_Indicators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		meta   Meta
		ok     bool
		failed bool
	}{
		{"success", Meta{"success": true}, true, false},
		{"failure", Meta{"success": false}, false, true},
		{"absent", Meta{}, false, false},
		{"non-bool", Meta{"success": "yes"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.OK(); got != tt.ok {
				t.Errorf("OK() = %v, want %v", got, tt.ok)
			}
			if got := tt.meta.Failed(); got != tt.failed {
				t.Errorf("Failed() = %v, want %v", got, tt.failed)
			}
		})
	}
}
