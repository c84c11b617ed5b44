// Пакет cli — команды bucketctl: административный доступ к бакетам
// через тот же backend, что и у Bucket Gateway (переменные VS_*).
package cli

import (
	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/buckets"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/config"
)

// StoreOpener открывает хранилище бакетов.
type StoreOpener func() (*buckets.Store, error)

// NewRootCmd создаёт корневую команду bucketctl.
func NewRootCmd(open StoreOpener) *cobra.Command {
	root := &cobra.Command{
		Use:   "bucketctl",
		Short: "Административный доступ к бакетам VentaroAI",
		Long: `bucketctl работает с бакетами напрямую через backend хранилища,
настроенный переменными окружения VS_* (как у bucket-gateway).`,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStatsCmd(open),
		newUploadCmd(open),
		newListCmd(open),
		newGetCmd(open),
	)
	return root
}
