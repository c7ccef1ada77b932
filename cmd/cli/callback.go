package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	messaging "github.com/iho/paysaga/internal/adapter/messaging/kafka"
	kafkainfra "github.com/iho/paysaga/internal/infrastructure/kafka"
	"github.com/iho/paysaga/internal/usecase"
	"github.com/iho/paysaga/internal/webhook"
)

// newCallbackPublisher opens a publisher on the inbound topic. Replaced in tests.
var newCallbackPublisher = func(brokers []string, topic string) (usecase.CallbackPublisher, func() error) {
	producer := kafkainfra.NewProducer(brokers, zerolog.Nop())
	return messaging.NewCallbackPublisher(producer, topic), producer.Close
}

func callbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callback",
		Short: "Callback operations",
	}
	cmd.AddCommand(callbackParseCmd(), callbackInjectCmd())
	return cmd
}

func callbackParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file|->",
		Short: "Run a raw payload through the parser selector and print the canonical event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			parser := usecase.NewCallbackParser(webhook.DefaultSelector(), nil, zerolog.Nop())
			ev, err := parser.Parse(raw)
			if err != nil {
				return fmt.Errorf("parse callback: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), ev)
		},
	}
}

func callbackInjectCmd() *cobra.Command {
	var (
		resp    webhook.IntegratorResponse
		amount  string
		brokers string
		topic   string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Publish an integrator response to the inbound callback topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resp.Status == "" {
				return fmt.Errorf("--status is required")
			}
			if amount != "" {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid --amount: %w", err)
				}
				resp.Amount = d
			}

			ev := webhook.FromIntegratorResponse(resp)
			if err := ev.Validate(); err != nil {
				return err
			}

			if dryRun {
				return printJSON(cmd.OutOrStdout(), ev)
			}

			publisher, closeFn := newCallbackPublisher(strings.Split(brokers, ","), topic)
			defer closeFn()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := publisher.PublishCallback(ctx, ev); err != nil {
				return fmt.Errorf("publish callback: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %s to %s\n", ev.Type, topic)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&resp.Status, "status", "", "Integrator status, e.g. APPROVED, SUCCESS, REFUNDED")
	f.StringVar(&resp.Gateway, "gateway", "integrator", "Gateway name")
	f.StringVar(&resp.CorrelationID, "correlation-id", "", "Correlation id")
	f.StringVar(&resp.PaymentRequestID, "request-id", "", "Payment request id")
	f.StringVar(&resp.PaymentToken, "token", "", "Payment token")
	f.StringVar(&resp.RequestCode, "code", "", "Request code")
	f.StringVar(&resp.ExternalTransactionID, "transaction-id", "", "External transaction id")
	f.StringVar(&resp.ExternalRefundID, "refund-id", "", "External refund id")
	f.StringVar(&amount, "amount", "", "Amount in major units")
	f.StringVar(&resp.Currency, "currency", "", "ISO currency code")
	f.StringVar(&resp.ErrorCode, "error-code", "", "Gateway error code")
	f.StringVar(&resp.ErrorMessage, "error-message", "", "Gateway error message")
	f.StringVar(&brokers, "brokers", "localhost:9092", "Comma-separated Kafka brokers")
	f.StringVar(&topic, "topic", "payment.callbacks", "Inbound callback topic")
	f.BoolVar(&dryRun, "dry-run", false, "Print the canonical event instead of publishing it")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
