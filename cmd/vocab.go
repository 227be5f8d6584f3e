package cmd

import (
	"fmt"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// vocabCmd prints the vocabulary the normalizer would use.
var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Print the effective normalization vocabulary as YAML.",
	Long: `Print the header synonyms and value keywords used to normalize bug lists,
after overrides from the 'vocabulary' section of .bugsheet.yaml are applied.

The output can be pasted back into the config file as a starting point.

Examples:
  bugsheet vocab > vocabulary.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfigFile(); err != nil {
			return err
		}
		if err := viper.Unmarshal(input); err != nil {
			return fmt.Errorf("unable to unmarshal config: %w", err)
		}
		vocab, err := contract.ProcessVocabulary(input.Vocabulary, input.DefaultDefectType)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(map[string]contract.Vocabulary{"vocabulary": vocab})
		if err != nil {
			return fmt.Errorf("failed to encode vocabulary: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}
