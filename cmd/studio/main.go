package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do"
	"github.com/samber/lo"

	"github.com/shouni/illustration-studio/internal/config"
	"github.com/shouni/illustration-studio/internal/inject"
	"github.com/shouni/illustration-studio/internal/log"
	"github.com/shouni/illustration-studio/pkg/domain"
	"github.com/shouni/illustration-studio/pkg/studio"
)

const usage = `usage: studio <command> [flags]

commands:
  generate   プロンプトから画像を生成します
  edit       画像を編集指示で編集します
  think      アイデアからプロンプト案を作ります
  history    履歴を一覧表示します
  select     履歴の1件を表示します
  clear      履歴をすべて削除します
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Binding == config.BindingDirect {
		if err := cfg.RequireAPIKey(); err != nil {
			return err
		}
	}

	logger := log.New(os.Stderr, log.Options{Level: lo.Ternary(cfg.IsDevelopment(), slog.LevelInfo, slog.LevelWarn)})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.NewContext(ctx, logger)

	injector := inject.Setup(ctx, cfg)
	defer func() { _ = injector.Shutdown() }()

	s, err := do.Invoke[*studio.Studio](injector)
	if err != nil {
		return err
	}
	st := studio.NewState()
	s.Start(ctx, st)

	cli := &cli{studio: s, state: st, out: out}
	switch command {
	case "generate":
		return cli.generate(ctx, args)
	case "edit":
		return cli.edit(ctx, args)
	case "think":
		return cli.think(ctx, args)
	case "history":
		return cli.history()
	case "select":
		return cli.selectItem(args)
	case "clear":
		s.ClearHistory(ctx, st)
		fmt.Fprintln(out, "履歴を削除しました")
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

type cli struct {
	studio *studio.Studio
	state  *studio.State
	out    io.Writer
}

func (c *cli) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	prompt := fs.String("prompt", domain.DefaultPrompt, "生成プロンプト")
	aspect := fs.String("aspect", string(domain.DefaultAspectRatio), "アスペクト比 (1:1, 3:4, 4:3, 9:16, 16:9)")
	model := fs.String("model", string(domain.DefaultModel), "モデル")
	resolution := fs.String("resolution", string(domain.DefaultResolution), "解像度 (standard, 1k, 2k)")
	output := fs.String("o", "", "画像の保存先")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validateOptions(*aspect, *model, *resolution); err != nil {
		return err
	}

	c.state.Prompt = *prompt
	c.state.AspectRatio = domain.AspectRatio(*aspect)
	c.state.Model = domain.Model(*model)
	c.state.Resolution = domain.Resolution(*resolution)

	c.studio.Generate(ctx, c.state)
	return c.showResult(*output)
}

func (c *cli) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	prompt := fs.String("prompt", "", "編集指示")
	image := fs.String("image", "", "編集元の画像ファイル")
	aspect := fs.String("aspect", string(domain.DefaultAspectRatio), "アスペクト比")
	output := fs.String("o", "", "画像の保存先")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !domain.AspectRatio(*aspect).Valid() {
		return fmt.Errorf("invalid aspect ratio: %q", *aspect)
	}

	c.studio.SetMode(c.state, domain.ModeEdit)
	if *image != "" {
		if err := c.studio.LoadSourceImage(ctx, c.state, *image); err != nil {
			return err
		}
	}
	c.state.EditPrompt = *prompt
	c.state.AspectRatio = domain.AspectRatio(*aspect)

	c.studio.Edit(ctx, c.state)
	return c.showResult(*output)
}

func (c *cli) think(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("think", flag.ContinueOnError)
	query := fs.String("query", "", "コンセプトやアイデア")
	adopt := fs.Bool("generate", false, "提案をそのまま使って画像を生成する")
	output := fs.String("o", "", "画像の保存先 (-generate 指定時)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c.studio.SetMode(c.state, domain.ModeThinking)
	c.state.ThinkingQuery = *query
	c.studio.Think(ctx, c.state)
	if c.state.Error != "" {
		return errors.New(c.state.Error)
	}
	fmt.Fprintln(c.out, c.state.Suggestion)

	if !*adopt {
		return nil
	}
	c.studio.AdoptSuggestion(c.state)
	c.studio.Generate(ctx, c.state)
	return c.showResult(*output)
}

func (c *cli) history() error {
	if len(c.state.History) == 0 {
		fmt.Fprintln(c.out, "履歴はありません")
		return nil
	}
	for _, item := range c.state.History {
		fmt.Fprintf(c.out, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID,
			time.UnixMilli(item.Timestamp).Format(time.DateTime),
			item.Model, item.AspectRatio, item.Resolution, item.Prompt)
	}
	return nil
}

func (c *cli) selectItem(args []string) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	id := fs.String("id", "", "履歴の ID")
	edit := fs.Bool("edit", false, "編集モードとして選択する")
	output := fs.String("o", "", "画像の保存先")
	if err := fs.Parse(args); err != nil {
		return err
	}

	item, ok := lo.Find(c.state.History, func(h domain.HistoryItem) bool { return h.ID == *id })
	if !ok {
		return fmt.Errorf("history item not found: %q", *id)
	}
	if *edit {
		c.studio.SetMode(c.state, domain.ModeEdit)
	}
	c.studio.SelectHistoryItem(c.state, item)

	fmt.Fprintf(c.out, "prompt: %s\naspectRatio: %s\nmodel: %s\nresolution: %s\n",
		c.state.Prompt, c.state.AspectRatio, c.state.Model, c.state.Resolution)
	if c.state.EditPrompt != "" {
		fmt.Fprintf(c.out, "editPrompt: %s\n", c.state.EditPrompt)
	}
	return writeOrPrint(c.out, *output, c.state.SourceImage)
}

// showResult は直前の操作の結果を出力します。失敗していればその表示文言をエラーとして返します。
func (c *cli) showResult(output string) error {
	if c.state.Error != "" {
		return errors.New(c.state.Error)
	}
	if len(c.state.History) == 0 {
		return errors.New("no image was produced")
	}
	return writeOrPrint(c.out, output, c.state.History[0].Image)
}

func writeOrPrint(out io.Writer, path string, asset domain.ImageAsset) error {
	if path == "" {
		fmt.Fprintln(out, asset.DataURI())
		return nil
	}
	data, err := asset.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("画像の保存に失敗しました: %w", err)
	}
	fmt.Fprintf(out, "%s (%s) を保存しました\n", path, asset.MimeType)
	return nil
}

func validateOptions(aspect, model, resolution string) error {
	switch {
	case !domain.AspectRatio(aspect).Valid():
		return fmt.Errorf("invalid aspect ratio: %q", aspect)
	case !domain.Model(model).Valid():
		return fmt.Errorf("invalid model: %q", model)
	case !domain.Resolution(resolution).Valid():
		return fmt.Errorf("invalid resolution: %q", resolution)
	}
	return nil
}
