package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/ibento/common"
	"github.com/ibento/service"
)

type Command struct {
	Name    string              `json:"name"` // can be scrape, query, listDistinct, purge, translate, createTables
	Sources []string            `json:"sources"`
	Persist *bool               `json:"persist"` // overrides the configured default when set
	Filters common.EventFilters `json:"filters"`
	Field   string              `json:"field"` // for listDistinct: area, category or source_name
}

func processError(err error) {
	fmt.Println(err)
	os.Exit(2)
}

func readConfig(cfg *service.Config) {
	// Optional file overlay first, env wins.
	if raw, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			processError(err)
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		processError(err)
	}
}

func handleRequest(ctx context.Context, request json.RawMessage) error {
	var cfg service.Config
	readConfig(&cfg)

	var command Command
	if err := json.Unmarshal(request, &command); err != nil {
		return fmt.Errorf("failed to unmarshal command: %w", err)
	}
	if command.Persist != nil {
		cfg.Scrape.Persist = *command.Persist
	}

	svc := service.NewService(cfg)

	switch command.Name {
	case "scrape":
		report := svc.RunAll(command.Sources)
		summary, _ := json.Marshal(report)
		fmt.Println(string(summary))
		return nil
	case "query":
		events, total, err := svc.QueryEvents(command.Filters)
		if err != nil {
			return err
		}
		out, _ := json.Marshal(struct {
			Total  int            `json:"total"`
			Events []common.Event `json:"events"`
		}{total, events})
		fmt.Println(string(out))
		return nil
	case "listDistinct":
		values, err := svc.ListFilterValues(command.Field)
		if err != nil {
			return err
		}
		out, _ := json.Marshal(values)
		fmt.Println(string(out))
		return nil
	case "purge":
		return svc.Purge()
	case "translate":
		return svc.BackfillTranslations()
	case "createTables":
		return svc.CreateTables()
	default:
		return fmt.Errorf("unknown command: %s", command.Name)
	}
}

func main() {
	_, ok := os.LookupEnv("AWS_LAMBDA_FUNCTION_NAME")
	if ok {
		lambda.Start(handleRequest)
	} else {
		var command string
		flag.StringVar(&command, "command", "", `Command to run, e.g. {"name":"scrape","sources":["zepp"]}`)
		flag.Parse()

		if err := handleRequest(context.Background(), []byte(command)); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}
