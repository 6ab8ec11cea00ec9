package health

import (
	"context"
	"testing"
)

func TestCheckAll_Empty(t *testing.T) {
	r := NewRegistry()
	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Error("empty registry should be healthy")
	}
	if len(statuses) != 0 {
		t.Errorf("expected no statuses, got %d", len(statuses))
	}
}

func TestCheckAll_AllHealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("classifier", func(ctx context.Context) Status {
		return Status{Healthy: true, Detail: "decision_tree trained"}
	})
	r.Register("pipeline", func(ctx context.Context) Status {
		return Status{Healthy: true}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Error("expected aggregate healthy")
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Name != "classifier" || statuses[0].Detail != "decision_tree trained" {
		t.Errorf("unexpected first status: %+v", statuses[0])
	}
	if statuses[1].Name != "pipeline" {
		t.Errorf("registration order not preserved: %+v", statuses[1])
	}
}

func TestCheckAll_OneUnhealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("classifier", func(ctx context.Context) Status {
		return Status{Healthy: false, Detail: "model not trained"}
	})
	r.Register("pipeline", func(ctx context.Context) Status {
		return Status{Healthy: true}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if healthy {
		t.Error("expected aggregate unhealthy")
	}
	if statuses[0].Healthy {
		t.Error("classifier status should be unhealthy")
	}
}

func TestRegister_ReplaceKeepsPosition(t *testing.T) {
	r := NewRegistry()
	r.Register("classifier", func(ctx context.Context) Status {
		return Status{Healthy: false}
	})
	r.Register("pipeline", func(ctx context.Context) Status {
		return Status{Healthy: true}
	})
	r.Register("classifier", func(ctx context.Context) Status {
		return Status{Healthy: true, Detail: "retrained"}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Error("replaced checker should report healthy")
	}
	if len(statuses) != 2 {
		t.Fatalf("replacement must not add a duplicate, got %d statuses", len(statuses))
	}
	if statuses[0].Name != "classifier" || statuses[0].Detail != "retrained" {
		t.Errorf("unexpected first status: %+v", statuses[0])
	}
}
