// ABOUTME: CLI commands for the nearest-neighbor tag classifier
// ABOUTME: The model is ephemeral, so classify trains and predicts in one run
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTrainCmd creates the train command.
func NewTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Evaluate the tag classifier on the current library",
		Long: `Evaluate the tag classifier on the current library.

Fits a nearest-neighbor model from the tagged patches and reports its
held-out accuracy, without changing any tags. Use this to judge whether
enough patches are tagged for classify to be useful.`,
		Args: cobra.NoArgs,
		RunE: runTrain,
	}
}

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Tag patches by parameter similarity to already-tagged ones",
		Long: `Tag patches by parameter similarity to already-tagged patches.

Trains a nearest-neighbor model from the tagged patches, then predicts
tags for every patch and adds them to the existing tag sets. Inferred
tags are additive; nothing is removed. The model lives only for this run.`,
		Args: cobra.NoArgs,
		RunE: runClassify,
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
	db, _, err := openLibrary()
	if err != nil {
		return err
	}

	accuracy, err := db.TrainClassifier()
	if err != nil {
		return fmt.Errorf("training classifier: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Classifier accuracy: %.1f%% (%d patches, %d tags)\n",
		accuracy*100, db.Len(), len(db.Tags()))
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	db, cfg, err := openLibrary()
	if err != nil {
		return err
	}

	accuracy, err := db.TrainClassifier()
	if err != nil {
		return fmt.Errorf("training classifier: %w", err)
	}
	added, err := db.ClassifyTags()
	if err != nil {
		return fmt.Errorf("classifying patches: %w", err)
	}
	if err := db.Save(cfg.DBPath); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d inferred tag assignments (model accuracy %.1f%%)\n",
			added, accuracy*100)
	}
	return nil
}
