package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"github.com/fruitexport/portal/internal/notify"
	"github.com/fruitexport/portal/internal/observability"
	"github.com/fruitexport/portal/internal/submit"
)

type submitOptions struct {
	action      string
	method      string
	fields      []string
	files       []string
	confirm     bool
	pushGateway string
}

func submitCmd(global *globalOptions) *cobra.Command {
	opts := &submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a form and print the resulting notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), global.timeout)
			defer cancel()
			return runSubmit(ctx, cmd.OutOrStdout(), global, opts, &http.Client{Timeout: global.timeout})
		},
	}
	cmd.Flags().StringVar(&opts.action, "action", "", "Form action URL, absolute or relative to --base-url")
	cmd.Flags().StringVar(&opts.method, "method", http.MethodPost, "Form method")
	cmd.Flags().StringArrayVar(&opts.fields, "field", nil, "Form field as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.files, "file", nil, "File input as name=path (repeatable)")
	cmd.Flags().BoolVar(&opts.confirm, "confirm", false, "Affirm delete prompts")
	cmd.Flags().StringVar(&opts.pushGateway, "pushgateway", os.Getenv("PUSHGATEWAY_URL"), "Pushgateway URL for submission metrics (env: PUSHGATEWAY_URL)")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

var errSubmissionFailed = errors.New("submission did not succeed")

// pushJobName groups portalctl runs on the pushgateway.
const pushJobName = "portalctl"

func runSubmit(ctx context.Context, out io.Writer, global *globalOptions, opts *submitOptions, httpClient *http.Client) error {
	action, err := resolveAction(global.baseURL, opts.action)
	if err != nil {
		return err
	}
	form := submit.Form{Action: action, Method: opts.method}
	for _, raw := range opts.fields {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return fmt.Errorf("submit: field %q must be name=value", raw)
		}
		form.Fields = append(form.Fields, submit.Field{Name: name, Value: value})
	}
	if opts.confirm {
		form.Fields = append(form.Fields, submit.Field{Name: "confirm", Value: "yes"})
	}
	for _, raw := range opts.files {
		name, path, ok := strings.Cut(raw, "=")
		if !ok || name == "" || path == "" {
			return fmt.Errorf("submit: file %q must be name=path", raw)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("submit: open %s: %w", path, err)
		}
		defer f.Close()
		form.Files = append(form.Files, submit.File{
			Field:       name,
			Filename:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Content:     f,
		})
	}

	var board notify.Board
	metrics := observability.NewMetrics()
	client := submit.NewClient(httpClient, &board, submit.WithRecorder(metrics))
	outcome, _, err := client.Submit(ctx, form, nil).Wait()
	for _, t := range board.Toasts() {
		fmt.Fprintf(out, "[%s] %s\n", t.Severity, t.Message)
	}
	if opts.pushGateway != "" {
		pusher := push.New(opts.pushGateway, pushJobName).Gatherer(metrics.Gatherer())
		if pushErr := pusher.PushContext(ctx); pushErr != nil {
			err = errors.Join(err, fmt.Errorf("submit: push metrics: %w", pushErr))
		}
	}
	if err != nil {
		return err
	}
	if outcome != submit.OutcomeSuccess {
		return errSubmissionFailed
	}
	return nil
}

func resolveAction(baseURL, action string) (string, error) {
	ref, err := url.Parse(action)
	if err != nil {
		return "", fmt.Errorf("submit: action: %w", err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("submit: base url: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
