package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/buckets"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

func newStatsCmd(open StoreOpener) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Количество и объём файлов по бакетам",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			report := store.Stats(cmd.Context())
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			red := color.New(color.FgRed)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BUCKET\tFILES\tSIZE")
			names := make([]string, 0, len(report))
			for name := range report {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				st := report[name]
				if st.Failed() {
					red.Fprintf(tw, "%s\t-\t%s\n", name, st.Err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", name, st.FileCount, humanSize(st.TotalSize))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "вывод в JSON")
	return cmd
}

func newUploadCmd(open StoreOpener) *cobra.Command {
	var (
		contextType string
		userID      string
		meta        map[string]string
	)
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Загрузить файл через авто-маршрутизатор",
		Example: `  bucketctl upload --type profile-image --user u1 --meta imageType=cover banner.png
  bucketctl upload --type legal --meta type=privacy --meta version=2.1 privacy.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buckets.ParseUploadContext(contextType, meta)
			if err != nil {
				return err
			}
			store, err := open()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			res, err := store.AutoUpload(cmd.Context(), buckets.File{
				Name: filepath.Base(args[0]),
				Size: info.Size(),
				Body: f,
			}, userID, uc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "uploaded %s/%s\n", res.Bucket, res.Key)
			fmt.Fprintln(out, res.URL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&contextType, "type", "t", "", "тип контекста: email-attachment, profile-image, document, product-asset, draft, legal")
	cmd.Flags().StringVarP(&userID, "user", "u", "admin", "владелец файла")
	cmd.Flags().StringToStringVarP(&meta, "meta", "m", nil, "метаданные контекста (key=value)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newListCmd(open StoreOpener) *cobra.Command {
	var (
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "ls BUCKET [PREFIX]",
		Short: "Список объектов бакета (новые первые)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]
			if !buckets.IsKnownBucket(bucket) {
				return fmt.Errorf("неизвестный бакет %q (допустимые: %s)", bucket, strings.Join(buckets.AllBuckets, ", "))
			}
			prefix := ""
			if len(args) == 2 {
				prefix = args[1]
			}

			store, err := open()
			if err != nil {
				return err
			}
			items, err := store.Client().List(cmd.Context(), bucket, prefix, storage.ListOptions{Limit: limit, Offset: offset})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", it.CreatedAt.UTC().Format("2006-01-02 15:04:05"), humanSize(it.Size), it.Key)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultListLimit, "максимум объектов")
	cmd.Flags().IntVar(&offset, "offset", 0, "смещение")
	return cmd
}

func newGetCmd(open StoreOpener) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get BUCKET KEY",
		Short: "Скачать объект (в stdout или файл)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			rc, _, err := store.Download(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			defer rc.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			_, err = io.Copy(w, rc)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "файл назначения")
	return cmd
}

// humanSize форматирует размер в байтах (1.5 KiB, 3.0 MiB).
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
