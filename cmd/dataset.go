package cmd

import (
	"github.com/reprise-cli/reprise/dataset"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// resolveDataset finds and loads the dataset a user query refers to.
func resolveDataset(store *dataset.Store, query string) (*dataset.Dataset, error) {
	meta, err := store.Find(query)
	if err != nil {
		return nil, err
	}
	return store.Load(meta.ID)
}

func completionDatasets(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	metas, err := dataset.DefaultStore().List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return lo.Map(metas, func(m *dataset.Meta, _ int) string {
		return m.ID + "\t" + m.Title
	}), cobra.ShellCompDirectiveNoFileComp
}
