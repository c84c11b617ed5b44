package backend

import (
	"log/slog"
	"os"
	"testing"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/config"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/localstore"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/memstore"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/remote"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.Config
		check func(t *testing.T, v any)
	}{
		{
			name: "memory",
			cfg:  config.Config{StorageBackend: config.BackendMemory, PublicBaseURL: "http://x/public"},
			check: func(t *testing.T, v any) {
				if _, ok := v.(*memstore.Store); !ok {
					t.Errorf("ожидался *memstore.Store, получено %T", v)
				}
			},
		},
		{
			name: "local",
			cfg:  config.Config{StorageBackend: config.BackendLocal, DataDir: t.TempDir()},
			check: func(t *testing.T, v any) {
				if _, ok := v.(*localstore.Store); !ok {
					t.Errorf("ожидался *localstore.Store, получено %T", v)
				}
			},
		},
		{
			name: "remote",
			cfg:  config.Config{StorageBackend: config.BackendRemote, RemoteURL: "https://project.example.co", RemoteServiceKey: "k"},
			check: func(t *testing.T, v any) {
				if _, ok := v.(*remote.Client); !ok {
					t.Errorf("ожидался *remote.Client, получено %T", v)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := Open(&tt.cfg, testLogger())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			tt.check(t, client)
		})
	}
}

func TestOpen_Unknown(t *testing.T) {
	if _, err := Open(&config.Config{StorageBackend: "s3"}, testLogger()); err == nil {
		t.Fatal("ожидалась ошибка для неизвестного backend")
	}
}
