package main

import (
	"context"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mcp-dynamics-go/distill"
	"mcp-dynamics-go/dynamics"
	"mcp-dynamics-go/internal/config"
	"mcp-dynamics-go/internal/logging"
	"mcp-dynamics-go/internal/pipeline"
	"mcp-dynamics-go/llm"
	"mcp-dynamics-go/query"
	"mcp-dynamics-go/tools"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	erp := dynamics.New(
		cfg.LoginBaseURL,
		cfg.TenantID,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.D365EnvURL,
		time.Duration(cfg.HTTPTimeout)*time.Second,
		log,
	)

	gen, err := newGenerator(cfg)
	if err != nil {
		log.Fatal("llm setup failed", zap.Error(err))
	}

	var delegatedTranslator query.Translator
	var delegatedDistiller distill.Distiller
	if gen != nil {
		delegatedTranslator = query.NewDelegated(gen)
		delegatedDistiller = distill.NewDelegated(gen)
		log.Info("delegated strategies enabled", zap.String("provider", cfg.LLMProvider))
	}

	translator := query.NewWithFallback(delegatedTranslator, query.Heuristic{}, log)
	distiller := distill.NewWithFallback(delegatedDistiller, distill.Heuristic{}, log)
	pipe := pipeline.New(translator, erp, distiller, log)

	// MCP server
	s := server.NewMCPServer(
		"dynamics-mcp",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	/* REGISTER TOOLS */
	s.AddTool(
		mcp.NewTool("get_customer_data",
			mcp.WithDescription("Answer a natural-language request about D365 F&O customer data."),
			mcp.WithString("context", mcp.Required()),
		),
		tools.GetCustomerData(pipe),
	)

	s.AddTool(
		mcp.NewTool("run_odata_query",
			mcp.WithDescription("Execute a relative OData path against the environment and summarize the result."),
			mcp.WithString("query_path", mcp.Required()),
		),
		tools.RunODataQuery(erp),
	)

	if err := server.ServeStdio(s); err != nil {
		log.Error("server error", zap.Error(err))
	}
}

// newGenerator picks the text-generation provider for the delegated
// strategies; nil means heuristics only.
func newGenerator(cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case "azure":
		return llm.NewAzureOpenAI(
			cfg.AzureOpenAIEndpoint,
			cfg.AzureOpenAIDeployment,
			cfg.AzureOpenAIKey,
			cfg.AzureOpenAIAPIVersion,
		), nil
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, err
		}
		return llm.NewBedrock(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil
	}
	return nil, nil
}
