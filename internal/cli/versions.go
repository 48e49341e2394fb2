package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LegatusConsultingLtd/robotalk/internal/history"
)

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the stored draft versions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repo, closeRepo, err := buildRepository(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			store := history.NewStore(repo)
			versions := store.List()
			if len(versions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no versions recorded")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tKIND\tSUBJECT\tID")
			for _, version := range versions {
				subject := version.Snapshot.DraftSubject
				if subject == "" {
					subject = "(none)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					version.CreatedAt.Format("2006-01-02 15:04:05"), version.Kind, subject, version.ID)
			}
			return w.Flush()
		},
	}
}
