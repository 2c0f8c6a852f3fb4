package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-converge"
	"github.com/goliatone/go-converge/api"
	"github.com/goliatone/go-converge/controller"
)

var cli struct {
	BaseURL string        `help:"Creative API base URL." env:"CONVERGE_API_URL" default:"http://localhost:8080"`
	Token   string        `help:"Bearer token for the creative API." env:"CONVERGE_API_TOKEN"`
	Verbose bool          `short:"v" help:"Enable debug logging."`
	Timeout time.Duration `help:"Per-command timeout." default:"120s"`

	Start struct {
		Intent      string `arg:"" help:"Creative intent for the session."`
		Mode        string `help:"Starting point mode: converge, upload or quick." default:"converge"`
		AspectRatio string `help:"Output aspect ratio." default:"16:9"`
		UploadURL   string `help:"Source image URL for upload mode."`
	} `cmd:"" help:"Start a new convergence session."`

	Select struct {
		Dimension string `arg:"" help:"Dimension to commit: direction, mood, framing, lighting."`
		OptionID  string `arg:"" help:"Option id to commit."`
	} `cmd:"" help:"Commit an option for a dimension."`

	Regenerate struct{} `cmd:"" help:"Regenerate options for the current dimension."`

	Status struct{} `cmd:"" help:"Probe for a resumable session."`

	Abandon struct {
		SessionID  string `arg:"" help:"Session to abandon."`
		KeepImages bool   `help:"Keep generated images on the backend."`
	} `cmd:"" help:"Abandon a session."`

	Catalog struct {
		Dimension string `arg:"" optional:"" help:"Limit output to one dimension."`
	} `cmd:"" help:"Print the static option catalog."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("converge"),
		kong.Description("Drive a convergence session against the creative API."),
		kong.UsageOnError(),
	)
	if err := run(ctx.Command()); err != nil {
		fmt.Fprintf(os.Stderr, "converge: %v\n", err)
		os.Exit(1)
	}
}

func run(command string) error {
	logSink := io.Discard
	if cli.Verbose {
		logSink = os.Stderr
	}
	opts := []controller.Option{
		controller.WithLogger(converge.NewFmtLogger(logSink)),
	}

	client, err := api.NewHTTPClient(cli.BaseURL, api.WithAuthToken(cli.Token))
	if err != nil {
		return err
	}
	ctrl := controller.New(client, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
	defer cancel()

	switch {
	case command == "start <intent>":
		return cmdStart(ctx, ctrl)
	case command == "select <dimension> <option-id>":
		return cmdSelect(ctx, ctrl)
	case command == "regenerate":
		return cmdRegenerate(ctx, ctrl)
	case command == "status":
		return cmdStatus(ctx, client)
	case strings.HasPrefix(command, "abandon"):
		return cmdAbandon(ctx, client)
	case strings.HasPrefix(command, "catalog"):
		return cmdCatalog()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func cmdStart(ctx context.Context, ctrl *controller.Controller) error {
	mode := converge.StartingPointMode(cli.Start.Mode)
	ctrl.SetIntent(cli.Start.Intent)
	ctrl.StartSession(ctx, mode, cli.Start.AspectRatio, cli.Start.UploadURL)
	return reportState(ctrl.State())
}

func cmdSelect(ctx context.Context, ctrl *controller.Controller) error {
	dim, ok := converge.ParseDimension(cli.Select.Dimension)
	if !ok {
		return fmt.Errorf("unknown dimension: %s", cli.Select.Dimension)
	}
	if err := ctrl.CheckActiveSession(ctx); err != nil {
		return err
	}
	ctrl.ResumeSession()
	ctrl.SelectOption(ctx, dim, cli.Select.OptionID)
	return reportState(ctrl.State())
}

func cmdRegenerate(ctx context.Context, ctrl *controller.Controller) error {
	if err := ctrl.CheckActiveSession(ctx); err != nil {
		return err
	}
	ctrl.ResumeSession()
	ctrl.Regenerate(ctx)
	return reportState(ctrl.State())
}

func cmdStatus(ctx context.Context, client api.Client) error {
	snap, err := client.GetActiveSession(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		fmt.Println("no active session")
		return nil
	}
	return printJSON(snap)
}

func cmdAbandon(ctx context.Context, client api.Client) error {
	res, err := client.AbandonSession(ctx, cli.Abandon.SessionID, !cli.Abandon.KeepImages)
	if err != nil {
		return err
	}
	fmt.Printf("abandoned=%v images_deleted=%d\n", res.Abandoned, res.ImagesDeleted)
	return nil
}

func cmdCatalog() error {
	cat := converge.DefaultCatalog()
	if cli.Catalog.Dimension != "" {
		dim, ok := converge.ParseDimension(cli.Catalog.Dimension)
		if !ok {
			return fmt.Errorf("unknown dimension: %s", cli.Catalog.Dimension)
		}
		return printJSON(map[string]any{string(dim): cat.OptionsFor(dim)})
	}
	out := map[string]any{}
	for _, dim := range converge.Dimensions {
		out[string(dim)] = cat.OptionsFor(dim)
	}
	return printJSON(out)
}

func reportState(state converge.SessionState) error {
	if state.ErrorMessage != "" {
		return fmt.Errorf("%s", state.ErrorMessage)
	}
	if state.CreditsModal != nil {
		return fmt.Errorf("insufficient credits: need %d, have %d",
			state.CreditsModal.Required, state.CreditsModal.Available)
	}
	if state.SessionExpired != nil {
		return fmt.Errorf("session expired")
	}
	fmt.Printf("session=%s step=%s\n", state.SessionID, state.Step)
	for _, img := range state.CurrentImages {
		fmt.Printf("  image %s %s\n", img.ID, img.URL)
	}
	for _, opt := range state.CurrentOptions {
		fmt.Printf("  option %s %q\n", opt.ID, opt.Label)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
