package types

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/peter-xbs/FSM/logger"
	"gopkg.in/yaml.v3"
)

const DefaultActTag = "act"

type RelationTypeRule struct {
	TriggerLabel  string `yaml:"trigger_label" json:"trigger_label"`
	ReceiverLabel string `yaml:"receiver_label" json:"receiver_label"`
	Type          string `yaml:"type" json:"type"`
}

type RelexConfig struct {
	ActTag         string              `yaml:"act_tag" json:"act_tag"`
	LabelOverrides map[string][]string `yaml:"label_overrides" json:"label_overrides"`
	RelationTypes  []RelationTypeRule  `yaml:"relation_types" json:"relation_types"`
}

type ParamsConfig struct {
	Relex RelexConfig `yaml:"RELEX" json:"relex"`
}

type Configuration struct {
	Name     string       `json:"name"`
	FilePath string       `json:"file_path"`
	Params   ParamsConfig `yaml:"params" json:"params"`
}

func (cfg Configuration) ActTag() string {
	if cfg.Params.Relex.ActTag == "" {
		return DefaultActTag
	}
	return cfg.Params.Relex.ActTag
}

// ParseConfiguration decodes one YAML configuration and validates it.
func ParseConfiguration(name string, buf []byte) (Configuration, error) {
	cfg := Configuration{Name: name}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("configuration %s: %w", name, err)
	}
	if len(cfg.Params.Relex.RelationTypes) == 0 {
		return cfg, fmt.Errorf("configuration %s: %w", name, errors.New("no relation types defined"))
	}
	for i, rule := range cfg.Params.Relex.RelationTypes {
		if rule.TriggerLabel == "" || rule.ReceiverLabel == "" || rule.Type == "" {
			return cfg, fmt.Errorf("configuration %s: relation type rule %d is incomplete", name, i)
		}
	}
	return cfg, nil
}

// LoadConfigurations reads every *.yaml file of dirPath. Broken files are
// logged and skipped. Result is ordered by configuration name.
func LoadConfigurations(dirPath string) ([]Configuration, error) {
	relexLogger := logger.NewLogger("LoadConfigurations")

	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.DirEntry) {
			defer wg.Done()
			name := strings.TrimSuffix(file.Name(), ".yaml")
			filePath := path.Join(dirPath, file.Name())
			buf, err := os.ReadFile(filePath)
			if err != nil {
				relexLogger.Err(err).Str("file", filePath).Msg("Could not read configuration")
				return
			}
			cfg, err := ParseConfiguration(name, buf)
			if err != nil {
				relexLogger.Err(err).Str("file", filePath).Msg("Skipping invalid configuration")
				return
			}
			cfg.FilePath = filePath

			configChan <- cfg
		}(f)
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(files))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs, nil
}
