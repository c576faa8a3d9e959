package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/dmitrijs2005/containerhub/internal/client/api"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func (a *App) newUploadCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file as a new container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			info, err := a.fs.Stat(src)
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", src)
			}

			open := func() (io.ReadCloser, error) { return a.fs.Open(src) }

			return a.withClient(ctx, func(c *api.Client) error {
				cont, err := c.Upload(ctx, filepath.Base(src), open)
				if err != nil {
					return err
				}
				cmd.Printf("container %d: %s (%s, %s)\n", cont.ID, cont.FilePath, cont.ContentType, humanize.Bytes(uint64(info.Size())))
				return nil
			})
		},
	}
}

func (a *App) newListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List your containers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(ctx, func(c *api.Client) error {
				list, err := c.List(ctx)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					cmd.Println("no containers")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tFILE\tTYPE\tUPLOADED")
				for _, cont := range list {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", cont.ID, cont.FilePath, cont.ContentType, humanize.Time(cont.CreatedAt))
				}
				return tw.Flush()
			})
		},
	}
}

func (a *App) newDownloadCommand(ctx context.Context) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "download <containerId>",
		Short: "Save the analysis result of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withClient(ctx, func(c *api.Client) error {
				name, content, err := c.DownloadResult(ctx, id)
				if err != nil {
					return err
				}
				if err := a.fs.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				dst := filepath.Join(outDir, filepath.Base(name))
				if err := afero.WriteFile(a.fs, dst, content, 0o644); err != nil {
					return err
				}
				cmd.Printf("saved %s (%s)\n", dst, humanize.Bytes(uint64(len(content))))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to save the result into")
	return cmd
}
