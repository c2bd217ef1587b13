package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dialogue-agent/internal/analyzer"
	"dialogue-agent/internal/domain"
	"dialogue-agent/internal/integrations/accounts"
	"dialogue-agent/internal/repository"
	"dialogue-agent/internal/responder"
	"dialogue-agent/internal/usecase"
)

var (
	verbose  bool
	clientID string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dialogue-agent",
	Short: "Interactive logistics assistant (Spanish)",
	Long: `dialogue-agent runs the rule-based conversational assistant for the
logistics platform as an interactive terminal chat.

It loads the account snapshot for the configured client, opens a
session with a personalized greeting and then answers each message:
operations, tracking, invoices, quotes and support. Escalated turns
print a case reference a few seconds after the reply.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&clientID, "client", "", "client account to open the session for (default from DIALOGUE_CLIENT_ID)")

	viper.SetEnvPrefix("DIALOGUE")
	viper.AutomaticEnv()
	viper.SetDefault("client_id", "demo")
	viper.SetDefault("typing_base_delay", "800ms")
	viper.SetDefault("escalation_delay", "2s")
	viper.SetDefault("max_message_length", 2000)
	viper.SetDefault("session_max_idle", "30m")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runChat(ctx context.Context) error {
	if clientID == "" {
		clientID = viper.GetString("client_id")
	}

	config := usecase.Config{
		TypingBaseDelay: viper.GetDuration("typing_base_delay"),
		EscalationDelay: viper.GetDuration("escalation_delay"),
		MaxMessageLen:   viper.GetInt("max_message_length"),
	}

	store := repository.NewMemoryStore()
	janitor := repository.NewCleanupJob(store, repository.CleanupConfig{MaxIdle: viper.GetDuration("session_max_idle")}, logger)
	janitor.Start()
	defer janitor.Stop()

	svc, err := usecase.NewService(demoAccounts(), store, analyzer.NewAnalyzer(), responder.NewGenerator(nil), logger, config)
	if err != nil {
		return fmt.Errorf("failed to create dialogue service: %w", err)
	}
	defer svc.Close()

	svc.SetEscalationListener(usecase.EscalationListenerFunc(func(n usecase.EscalationNotice) {
		fmt.Printf("\n⚠  Caso %s escalado a un asesor (sesión %s, turno %d)\n> ", n.CaseRef, shortID(n.SessionID), n.Turn)
	}))

	started, err := svc.StartSession(ctx, usecase.StartSessionInput{ClientID: clientID})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	printReply(started.Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	lastActions := started.Greeting.SuggestedActions
	fmt.Print("> ")
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		switch {
		case text == "":
			fmt.Print("> ")
			continue
		case text == "/salir" || text == "/exit":
			if err := svc.EndSession(ctx, started.SessionID); err != nil {
				logger.Warn("failed to end session", zap.Error(err))
			}
			fmt.Println("¡Hasta pronto!")
			return nil
		}

		out, err := dispatch(ctx, svc, started.SessionID, text, lastActions)
		if err != nil {
			fmt.Printf("(error: %v)\n> ", err)
			continue
		}
		printReply(out.Response)
		lastActions = out.Response.SuggestedActions
		fmt.Print("> ")
	}
	return scanner.Err()
}

// dispatch treats a lone digit as picking one of the last suggested
// actions; anything else is a regular message.
func dispatch(ctx context.Context, svc *usecase.Service, sessionID, text string, actions []string) (usecase.HandleMessageOutput, error) {
	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(actions) {
		return svc.SelectSuggestedAction(ctx, usecase.SelectActionInput{
			SessionID:   sessionID,
			ActionLabel: actions[n-1],
		})
	}
	return svc.HandleMessage(ctx, usecase.HandleMessageInput{SessionID: sessionID, Text: text})
}

func printReply(resp domain.DialogueResponse) {
	fmt.Println(resp.Message)
	for i, action := range resp.SuggestedActions {
		fmt.Printf("  %d) %s\n", i+1, action)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// demoAccounts is the fixture backing the REPL; a real deployment plugs
// the platform's account facade in instead.
func demoAccounts() *accounts.StaticProvider {
	return &accounts.StaticProvider{Snapshots: map[string]domain.AccountSnapshot{
		"demo": {
			ClientName:          "María",
			HasActiveOperations: true,
			PendingInvoiceCount: 2,
			OperationsThisMonth: 5,
			AverageDeliveryDays: 4.2,
		},
		"nuevo": {
			ClientName: "Carlos",
		},
		"moroso": {
			ClientName:          "Laura",
			OverdueInvoiceCount: 3,
			PendingInvoiceCount: 3,
		},
	}}
}
