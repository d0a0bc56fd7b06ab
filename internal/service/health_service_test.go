package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/service"
)

type fakeStore struct {
	err error
}

func (f fakeStore) HealthCheck(ctx context.Context) error { return f.err }

func TestHealthService_Check(t *testing.T) {
	tests := []struct {
		name   string
		stores map[models.Source]service.HealthChecker
		want   map[models.Source]string
	}{
		{
			name:   "both up",
			stores: map[models.Source]service.HealthChecker{models.SourceChat: fakeStore{}, models.SourceWeb: fakeStore{}},
			want:   map[models.Source]string{models.SourceChat: service.StoreOK, models.SourceWeb: service.StoreOK},
		},
		{
			name:   "web ping fails",
			stores: map[models.Source]service.HealthChecker{models.SourceChat: fakeStore{}, models.SourceWeb: fakeStore{err: errors.New("closed")}},
			want:   map[models.Source]string{models.SourceChat: service.StoreOK, models.SourceWeb: service.StoreDown},
		},
		{
			name:   "chat never opened",
			stores: map[models.Source]service.HealthChecker{models.SourceWeb: fakeStore{}},
			want:   map[models.Source]string{models.SourceChat: service.StoreUnavailable, models.SourceWeb: service.StoreOK},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.NewHealthService(tt.stores).Check(context.Background())
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for source, state := range tt.want {
				if got[source] != state {
					t.Errorf("Expected %s to be %s, got %s", source, state, got[source])
				}
			}
		})
	}
}
