package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"verseline/internal/api"
	"verseline/internal/config"
	"verseline/internal/poetry"
	"verseline/internal/queue"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		themeFlag      string
		animationFlag  string
		durationFlag   float64
		linesFlag      []string
		textFile       string
		titleFlag      string
		authorFlag     string
		narrationFlag  bool
		voiceFlag      string
		rateFlag       float64
		backgroundFlag string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Enqueue a new poetry video",
		Long: `Enqueue a new poetry video for the daemon to render.

Without --line or --text-file a poem is picked from the built-in catalog
matching the chosen theme.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				req := api.CreateVideoRequest{
					Theme:               themeFlag,
					AnimationMode:       animationFlag,
					DurationSeconds:     durationFlag,
					Lines:               linesFlag,
					Title:               titleFlag,
					Author:              authorFlag,
					Narration:           narrationFlag,
					VoiceStyle:          voiceFlag,
					SpeakingRate:        rateFlag,
					CustomBackgroundURL: backgroundFlag,
				}
				if textFile != "" {
					data, err := os.ReadFile(textFile)
					if err != nil {
						return fmt.Errorf("read poem file: %w", err)
					}
					req.Text = string(data)
				}

				catalog := poetry.NewCatalog(rand.New(rand.NewSource(time.Now().UnixNano())))
				queueReq, err := api.BuildQueueRequest(cfg, catalog, req)
				if err != nil {
					return err
				}

				item, err := store.NewVideo(cmd.Context(), queueReq)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Queued video %s (item #%d, theme %s)\n", item.VideoID, item.ID, item.Theme)
				var poem poetry.Poem
				if poem, err = poetry.Decode(item.PoetryJSON); err == nil {
					if poem.Title != "" {
						fmt.Fprintf(out, "  %s", poem.Title)
						if poem.Author != "" {
							fmt.Fprintf(out, " - %s", poem.Author)
						}
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "  %d caption line(s)\n", len(poem.Lines))
				}
				fmt.Fprintf(out, "Track it with: verseline queue show %d\n", item.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&themeFlag, "theme", "t", "", "Visual theme (default from registry)")
	cmd.Flags().StringVarP(&animationFlag, "animation", "a", "", "Caption animation mode")
	cmd.Flags().Float64VarP(&durationFlag, "duration", "d", 0, "Target duration in seconds")
	cmd.Flags().StringArrayVarP(&linesFlag, "line", "l", nil, "Poem line (repeatable)")
	cmd.Flags().StringVar(&textFile, "text-file", "", "File containing the poem text")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Poem title")
	cmd.Flags().StringVar(&authorFlag, "author", "", "Poem author")
	cmd.Flags().BoolVar(&narrationFlag, "narration", false, "Synthesize narration for the poem")
	cmd.Flags().StringVar(&voiceFlag, "voice", "", "Narration voice style")
	cmd.Flags().Float64Var(&rateFlag, "speaking-rate", 0, "Narration speaking rate")
	cmd.Flags().StringVar(&backgroundFlag, "background-url", "", "Custom background video URL")
	return cmd
}
