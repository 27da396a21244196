// Command f50 runs filter_50 queries against a local records dump.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/okian/maifilter/internal/adapters/catalog"
	service "github.com/okian/maifilter/internal/app"
	"github.com/okian/maifilter/internal/domain/display"
	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/internal/domain/query"
	"github.com/okian/maifilter/internal/domain/selection"
	"github.com/okian/maifilter/internal/domain/types"
	"github.com/okian/maifilter/pkg/logger"
)

var (
	appName = "f50"
	appSha  = "populated-at-link-time"
)

const titleColumns = 20

func main() {
	if err := makeApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func makeApp(out, errOut io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Usage = "filter and rank maimai DX records offline"
	app.Writer = out
	app.ErrWriter = errOut
	app.Commands = []cli.Command{
		{
			Name:      "query",
			Usage:     "run a filter_50 query over a prober records dump",
			ArgsUsage: "[tokens...]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "music-data",
					Value:  "static/music_data.json",
					EnvVar: "MAIFILTER_MUSIC_DATA_PATH",
					Usage:  "Path to the music data list",
				},
				cli.StringFlag{
					Name:   "chart-stats",
					Value:  "static/chart_stats.json",
					EnvVar: "MAIFILTER_CHART_STATS_PATH",
					Usage:  "Path to the chart statistics (needed by fit)",
				},
				cli.StringFlag{
					Name:   "aliases",
					Value:  "static/music_alias.json",
					EnvVar: "MAIFILTER_ALIAS_PATH",
					Usage:  "Path to the alias table (needed by alias=)",
				},
				cli.StringFlag{
					Name:  "records",
					Usage: "Path to a prober records JSON dump",
				},
			},
			Action: runQuery,
		},
		{
			Name:  "rating",
			Usage: "rating of one play",
			Flags: []cli.Flag{
				cli.Float64Flag{Name: "ds", Usage: "Difficulty constant"},
				cli.Float64Flag{Name: "achv", Usage: "Achievement percentage"},
			},
			Action: runRating,
		},
		{
			Name:  "breakpoints",
			Usage: "achievements at which a chart's rating changes",
			Flags: []cli.Flag{
				cli.Float64Flag{Name: "ds", Usage: "Difficulty constant"},
			},
			Action: runBreakpoints,
		},
	}
	return app
}

func runQuery(appCtx *cli.Context) error {
	tokens := []string(appCtx.Args())
	for _, tok := range tokens {
		if strings.EqualFold(tok, "help") {
			_, err := fmt.Fprintln(appCtx.App.Writer, service.HelpText)
			return err
		}
	}
	if appCtx.String("records") == "" {
		return errors.New("records dump must be specified with --records")
	}

	store := catalog.NewStore(
		catalog.WithMusicDataPath(appCtx.String("music-data")),
		catalog.WithChartStatsPath(appCtx.String("chart-stats")),
		catalog.WithAliasPath(appCtx.String("aliases")),
		catalog.WithLogger(logger.New(logger.WithWriter(appCtx.App.ErrWriter))),
	)
	if err := store.Load(context.Background()); err != nil {
		return fmt.Errorf("could not load catalog: %w", err)
	}
	snap := store.Snapshot()

	raw, err := os.ReadFile(appCtx.String("records"))
	if err != nil {
		return fmt.Errorf("could not read records: %w", err)
	}
	var info model.PlayerInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return fmt.Errorf("could not decode records: %w", err)
	}

	q, err := query.Parse(tokens, snap)
	if err != nil {
		return err
	}
	res, err := selection.Select(info.Records, q, snap)
	if err != nil {
		return err
	}
	return printResult(appCtx.App.Writer, &info, q, res)
}

func printResult(w io.Writer, info *model.PlayerInfo, q *query.Query, res *selection.Result) error {
	name := info.Nickname
	if name == "" {
		name = info.Username
	}
	fmt.Fprintf(w, "%s  rating %d  [%s]\n", name, res.Rating, q)
	if res.Misses > 0 {
		fmt.Fprintf(w, "%d records skipped (song not in catalog)\n", res.Misses)
	}
	for i := range res.Buckets {
		printBucket(w, &res.Buckets[i])
	}
	return nil
}

func printBucket(w io.Writer, b *types.Bucket) {
	fmt.Fprintf(w, "\n%s  %d/%d  rating %d\n", b.Name, b.Len(), b.Capacity, b.Rating)
	for _, e := range b.Entries {
		fmt.Fprintf(w, "%3d  %s  %s  %4.1f  %8.4f%%  %3d  %-4s  %d/%d\n",
			e.Rank,
			display.PadRight(e.ShortTitle, titleColumns),
			levelLabel(e.LevelIndex),
			e.DS,
			e.Achievements,
			e.Ra,
			e.Rate,
			e.DXScore,
			e.TotalDXScore,
		)
	}
}

func levelLabel(i int) string {
	if i < 0 || i >= len(model.LevelLabels) {
		return "?"
	}
	return model.LevelLabels[i]
}

func runRating(appCtx *cli.Context) error {
	res, err := service.New().Rating(appCtx.Float64("ds"), appCtx.Float64("achv"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(appCtx.App.Writer, "%d %s\n", res.Rating, res.Rank)
	return err
}

func runBreakpoints(appCtx *cli.Context) error {
	points, err := service.New().Breakpoints(appCtx.Float64("ds"))
	if err != nil {
		return err
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(appCtx.App.Writer, "%8.4f  %3d  %s\n", p.Achievement, p.Rating, p.Rank); err != nil {
			return err
		}
	}
	return nil
}
