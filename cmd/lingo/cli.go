package main

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/exercise"
	"github.com/hpungsan/lingo/internal/llm"
	"github.com/hpungsan/lingo/internal/logger"
	"github.com/hpungsan/lingo/internal/ops"
	"github.com/hpungsan/lingo/internal/scheduler"
	"github.com/hpungsan/lingo/internal/sheet"
	"github.com/hpungsan/lingo/internal/web"
)

// newCLIApp creates the CLI application with all commands.
// client may be nil when no API key is configured.
func newCLIApp(db *sql.DB, cfg *config.Config, client llm.Client, log *logger.Logger) *cli.App {
	app := &cli.App{
		Name:    "lingo",
		Usage:   "Vocabulary trainer with fuzzy search and generated exercises",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(db),
			showCmd(db),
			updateCmd(db),
			deleteCmd(db),
			favoriteCmd(db),
			recordCmd(db),
			listCmd(db, cfg),
			categoriesCmd(db),
			statsCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			importSheetCmd(db, cfg),
			exportSheetCmd(db, cfg),
			exerciseCmd(db, cfg, client),
			serveCmd(db, cfg, client, log),
		},
		// Answers and notes may contain commas
		DisableSliceFlagSeparator: true,
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a word pair",
		ArgsUsage: "<target-word> <native-word>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category (repeatable)"},
			&cli.StringFlag{Name: "sentence", Aliases: []string{"s"}, Usage: "Sample sentence"},
			&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Notes (markdown)"},
			&cli.StringFlag{Name: "source", Usage: "Where the word came from (default: manual)"},
			&cli.BoolFlag{Name: "favorite", Aliases: []string{"f"}, Usage: "Mark as favorite"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewInvalidRequest("add requires <target-word> <native-word>"))
			}

			input := ops.AddInput{
				TargetWord: c.Args().Get(0),
				NativeWord: c.Args().Get(1),
				Categories: c.StringSlice("category"),
				IsFavorite: c.Bool("favorite"),
				Mode:       ops.AddMode(c.String("mode")),
			}
			if c.IsSet("sentence") {
				input.SampleSentence = stringFlag(c, "sentence")
			}
			if c.IsSet("notes") {
				input.Notes = stringFlag(c, "notes")
			}
			if c.IsSet("source") {
				input.Source = stringFlag(c, "source")
			}

			output, err := ops.Add(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a word with its learning history",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, db, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a word; history and date added are kept",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "New target word"},
			&cli.StringFlag{Name: "native", Usage: "New native word"},
			&cli.StringSliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "Replace categories (repeatable)"},
			&cli.BoolFlag{Name: "clear-categories", Usage: "Remove all categories"},
			&cli.StringFlag{Name: "sentence", Aliases: []string{"s"}, Usage: "New sample sentence (empty clears)"},
			&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "New notes (empty clears)"},
			&cli.BoolFlag{Name: "favorite", Aliases: []string{"f"}, Usage: "Set favorite flag (--favorite=false clears)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.UpdateInput{ID: c.Args().First()}

			if c.IsSet("target") {
				input.TargetWord = stringFlag(c, "target")
			}
			if c.IsSet("native") {
				input.NativeWord = stringFlag(c, "native")
			}
			if c.IsSet("category") {
				categories := c.StringSlice("category")
				input.Categories = &categories
			} else if c.Bool("clear-categories") {
				categories := []string{}
				input.Categories = &categories
			}
			if c.IsSet("sentence") {
				input.SampleSentence = stringFlag(c, "sentence")
			}
			if c.IsSet("notes") {
				input.Notes = stringFlag(c, "notes")
			}
			if c.IsSet("favorite") {
				favorite := c.Bool("favorite")
				input.IsFavorite = &favorite
			}

			output, err := ops.Update(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a word and its history",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// favoriteCmd creates the favorite command.
func favoriteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "favorite",
		Usage:     "Toggle or set the favorite flag",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "set", Usage: "Set explicitly instead of toggling (--set=false clears)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FavoriteInput{ID: c.Args().First()}
			if c.IsSet("set") {
				favorite := c.Bool("set")
				input.Favorite = &favorite
			}

			output, err := ops.Favorite(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// recordCmd creates the record command.
func recordCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "record",
		Usage:     "Record one practice attempt",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Required: true, Usage: "Exercise kind: flashcard|gap_fill|matching|translation|multiple_choice"},
			&cli.BoolFlag{Name: "success", Usage: "The attempt was correct"},
			&cli.IntFlag{Name: "time", Usage: "Seconds spent"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Record(c.Context, db, ops.RecordInput{
				ID:               c.Args().First(),
				ExerciseKind:     c.String("kind"),
				Success:          c.Bool("success"),
				TimeSpentSeconds: c.Int("time"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List words with filters, fuzzy search and sorting",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category"},
			&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorites"},
			&cli.BoolFlag{Name: "history", Usage: "Only words with practice history"},
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Fuzzy search term"},
			&cli.StringFlag{Name: "sort", Usage: "date_added|target_word|native_word|learning_progress|last_learning"},
			&cli.StringFlag{Name: "order", Usage: "asc|desc"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				FavoritesOnly:  c.Bool("favorites"),
				HasHistoryOnly: c.Bool("history"),
				Sort:           c.String("sort"),
				Order:          c.String("order"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
			}
			if c.IsSet("category") {
				input.Category = stringFlag(c, "category")
			}
			if c.IsSet("search") {
				input.Search = stringFlag(c, "search")
			}

			output, err := ops.List(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// categoriesCmd creates the categories command.
func categoriesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "categories",
		Usage:     "List categories with counts, or the words of one category",
		ArgsUsage: "[name]",
		Action: func(c *cli.Context) error {
			input := ops.CategoriesInput{}
			if name := c.Args().First(); name != "" {
				input.Name = &name
			}

			output, err := ops.Categories(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show vocabulary and practice totals",
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(c.Context, db)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export words and history to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.lingo/exports/<category>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category"},
			&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorites"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				Path:          c.String("path"),
				FavoritesOnly: c.Bool("favorites"),
			}
			if c.IsSet("category") {
				input.Category = stringFlag(c, "category")
			}

			output, err := ops.Export(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import words and history from a JSONL export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importSheetCmd creates the import-sheet command.
func importSheetCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import-sheet",
		Usage: "Import word pairs from an .xlsx or .csv sheet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Sheet file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "skip", Usage: "Collision mode: error|replace|skip"},
			&cli.StringFlag{Name: "columns", Usage: "Column letters target,native[,categories,sentence,notes] (default: A,B,C,D,E)"},
			&cli.StringFlag{Name: "sheet", Usage: "Sheet name (xlsx; default: first sheet)"},
			&cli.IntFlag{Name: "start-row", Value: 2, Usage: "First data row (1-based)"},
			&cli.StringFlag{Name: "separator", Value: ";", Usage: "Separator inside the categories cell"},
			&cli.BoolFlag{Name: "sections", Usage: "Rows with only a target word start a new category section"},
			&cli.StringSliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category added to every row (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ImportSheetInput{
				Path:              c.String("path"),
				Mode:              ops.ImportMode(c.String("mode")),
				SheetName:         c.String("sheet"),
				StartRow:          c.Int("start-row"),
				CategorySeparator: c.String("separator"),
				SectionRows:       c.Bool("sections"),
				Categories:        c.StringSlice("category"),
			}
			if c.IsSet("columns") {
				cols, err := parseColumns(c.String("columns"))
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Columns = &cols
			}

			output, err := ops.ImportSheet(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportSheetCmd creates the export-sheet command.
func exportSheetCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export-sheet",
		Usage: "Export words to an .xlsx or .csv sheet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Sheet file path (default: ~/.lingo/exports/<category>-<timestamp>.xlsx)"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category"},
			&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorites"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportSheetInput{
				Path:          c.String("path"),
				FavoritesOnly: c.Bool("favorites"),
			}
			if c.IsSet("category") {
				input.Category = stringFlag(c, "category")
			}

			output, err := ops.ExportSheet(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exerciseCmd groups the exercise subcommands.
func exerciseCmd(db *sql.DB, cfg *config.Config, client llm.Client) *cli.Command {
	return &cli.Command{
		Name:  "exercise",
		Usage: "Generate, answer and review exercises",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate an exercise from stored words",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Required: true, Usage: "gap_fill|matching|translation|multiple_choice"},
					&cli.StringSliceFlag{Name: "id", Usage: "Use these entries (repeatable); filters are ignored"},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category"},
					&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorites"},
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Fuzzy search term"},
					&cli.StringFlag{Name: "sort", Usage: "Selection order key (default: learning_progress)"},
					&cli.StringFlag{Name: "order", Usage: "asc|desc (default: asc)"},
					&cli.IntFlag{Name: "size", Usage: "Number of words to draw"},
					&cli.IntFlag{Name: "count", Usage: "Number of items to request"},
					&cli.StringFlag{Name: "difficulty", Usage: "Free-text difficulty hint"},
				},
				Action: func(c *cli.Context) error {
					input := ops.GenerateInput{
						Kind:          c.String("kind"),
						EntryIDs:      c.StringSlice("id"),
						FavoritesOnly: c.Bool("favorites"),
						Sort:          c.String("sort"),
						Order:         c.String("order"),
						Size:          c.Int("size"),
						Count:         c.Int("count"),
						Difficulty:    c.String("difficulty"),
					}
					if c.IsSet("category") {
						input.Category = stringFlag(c, "category")
					}
					if c.IsSet("search") {
						input.Search = stringFlag(c, "search")
					}

					output, err := ops.Generate(c.Context, db, cfg, client, input)
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
			{
				Name:      "submit",
				Usage:     "Grade answers and record them in the learning history",
				ArgsUsage: "<exercise-id>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "answer", Aliases: []string{"a"}, Usage: "Answer for the next item, in order (repeatable; '-' skips)"},
					&cli.IntFlag{Name: "time", Usage: "Seconds spent on the whole exercise"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Grade without recording"},
					&cli.BoolFlag{Name: "retry", Usage: "Also create a retry exercise from the mistakes"},
				},
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					answers, err := answersFor(c.Context, db, id, c.StringSlice("answer"))
					if err != nil {
						return outputError(err)
					}

					output, err := ops.Submit(c.Context, db, cfg, ops.SubmitInput{
						ExerciseID:       id,
						Answers:          answers,
						TimeSpentSeconds: c.Int("time"),
						DryRun:           c.Bool("dry-run"),
						Retry:            c.Bool("retry"),
					})
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
			{
				Name:      "retry",
				Usage:     "Create an exercise from the items these answers get wrong",
				ArgsUsage: "<exercise-id>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "answer", Aliases: []string{"a"}, Usage: "Answer for the next item, in order (repeatable; '-' skips)"},
				},
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					answers, err := answersFor(c.Context, db, id, c.StringSlice("answer"))
					if err != nil {
						return outputError(err)
					}

					output, err := ops.RetryMistakes(c.Context, db, cfg, ops.RetryInput{ExerciseID: id, Answers: answers})
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
			{
				Name:      "show",
				Usage:     "Show a stored exercise",
				ArgsUsage: "<exercise-id>",
				Action: func(c *cli.Context) error {
					output, err := ops.GetExercise(c.Context, db, ops.GetExerciseInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List recent exercises",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListExercises(c.Context, db, ops.ListExercisesInput{Limit: c.Int("limit")})
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(database *sql.DB, cfg *config.Config, client llm.Client, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind to"},
			&cli.BoolFlag{Name: "no-backup", Usage: "Disable the periodic backup job"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(database, cfg, client, log, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			if n, err := db.CountEntries(c.Context, database); err == nil {
				log.Info("vocabulary loaded", "entries", n)
			}

			var onShutdown func()
			if !c.Bool("no-backup") {
				sched, err := newBackupScheduler(database, cfg, log)
				if err != nil {
					return outputError(err)
				}
				if err := sched.Start(); err != nil {
					return outputError(errors.NewInternal(err))
				}
				onShutdown = sched.Stop
			}

			if err := web.Run(srv, log, onShutdown); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// newBackupScheduler writes full JSONL exports into the exports directory.
func newBackupScheduler(database *sql.DB, cfg *config.Config, log *logger.Logger) (*scheduler.Scheduler, error) {
	dir, err := ops.DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	backup := func(ctx context.Context, path string) error {
		_, err := ops.Export(ctx, database, cfg, ops.ExportInput{Path: path})
		return err
	}
	return scheduler.New(log.With("component", "backup"), backup, dir, cfg.Backup), nil
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var lingoErr *errors.LingoError
	if stderrors.As(err, &lingoErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", lingoErr.Code, lingoErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stringFlag returns a pointer to the flag's value.
func stringFlag(c *cli.Context, name string) *string {
	v := c.String(name)
	return &v
}

// parseColumns parses "A,B,C,D,E"; missing trailing letters leave the field unmapped.
func parseColumns(s string) (sheet.Columns, error) {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToUpper(strings.TrimSpace(parts[i]))
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return sheet.Columns{}, fmt.Errorf("columns must name at least the target and native columns")
	}
	if len(parts) > 5 {
		return sheet.Columns{}, fmt.Errorf("at most 5 columns: target,native,categories,sentence,notes")
	}
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	return sheet.Columns{
		Target:     parts[0],
		Native:     parts[1],
		Categories: parts[2],
		Sentence:   parts[3],
		Notes:      parts[4],
	}, nil
}

// answersFor converts raw answers using the exercise's shape: matching and
// multiple choice take option numbers (1-based), the others free text.
func answersFor(ctx context.Context, db *sql.DB, exerciseID string, raw []string) ([]exercise.Answer, error) {
	ex, err := ops.GetExercise(ctx, db, ops.GetExerciseInput{ID: exerciseID})
	if err != nil {
		return nil, err
	}
	shape, _ := exercise.ShapeOf(ex.Kind)
	return parseAnswers(raw, shape == exercise.ShapeMatching || shape == exercise.ShapeMultipleChoice)
}

// parseAnswers builds answers from CLI values. "-" leaves an item unanswered.
func parseAnswers(raw []string, choice bool) ([]exercise.Answer, error) {
	answers := make([]exercise.Answer, 0, len(raw))
	for i, r := range raw {
		r = strings.TrimSpace(r)
		if r == "-" {
			answers = append(answers, exercise.Answer{})
			continue
		}
		if !choice {
			text := r
			answers = append(answers, exercise.Answer{Text: &text})
			continue
		}
		n, err := strconv.Atoi(r)
		if err != nil || n < 1 {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("answer %d must be an option number starting at 1", i+1))
		}
		idx := n - 1
		answers = append(answers, exercise.Answer{Choice: &idx})
	}
	return answers, nil
}
