package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rdnformat/rdn/rdnparser"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the optional rdn.yaml in the current working directory; flags
// override it.
type Config struct {
	MaxDepth       int    `yaml:"max-depth"`
	Comments       string `yaml:"comments"`
	TrailingCommas bool   `yaml:"trailing-commas"`
	MultipleValues bool   `yaml:"multiple-values"`
}

func LoadConfig() (Config, error) {
	var result Config

	if _, err := os.Stat("rdn.yaml"); errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}

	yamlFile, err := os.ReadFile("rdn.yaml")
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(yamlFile, &result); err != nil {
		return Config{}, err
	}
	logrus.Debugf("loaded options from rdn.yaml")
	return result, nil
}

// readerOptions merges rdn.yaml with the command line flags.
func readerOptions() (rdnparser.ReaderOptions, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return rdnparser.ReaderOptions{}, err
	}

	opts := rdnparser.ReaderOptions{
		MaxDepth:            cfg.MaxDepth,
		AllowTrailingCommas: cfg.TrailingCommas,
		AllowMultipleValues: cfg.MultipleValues,
	}
	mode := cfg.Comments
	if maxDepth != 0 {
		opts.MaxDepth = maxDepth
	}
	if comments != "" {
		mode = comments
	}
	if trailingCommas {
		opts.AllowTrailingCommas = true
	}
	if multipleValues {
		opts.AllowMultipleValues = true
	}
	switch mode {
	case "", "disallow":
	case "allow":
		opts.CommentHandling = rdnparser.CommentsAllow
	case "skip":
		opts.CommentHandling = rdnparser.CommentsSkip
	default:
		return opts, fmt.Errorf("unknown comment handling mode: %s", mode)
	}
	return opts, nil
}
