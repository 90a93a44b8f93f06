// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create the config file if missing, initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
		},
	}
}

// momentsCommand handles saved moment operations
func momentsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "moments",
		Aliases: []string{"m"},
		Usage:   "Save, list and delete moments",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Save a moment of a track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Aliases:  []string{"u"},
						Usage:    "Source URL of the track (YouTube or Spotify)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "start",
						Aliases:  []string{"s"},
						Usage:    "Start timestamp (SS, MM:SS or HH:MM:SS)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "end",
						Aliases:  []string{"e"},
						Usage:    "End timestamp (SS, MM:SS or HH:MM:SS)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Track title, used when no metadata service can resolve the URL",
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Track artist, used when no metadata service can resolve the URL",
					},
					&cli.StringFlag{
						Name:  "note",
						Usage: "Free-form note",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MomentsAdd,
			},
			{
				Name:  "list",
				Usage: "List saved moments",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "service",
						Usage: "Only moments from this service (youtube, spotify, ...)",
					},
					&cli.StringFlag{
						Name:  "canonical",
						Usage: "Only moments of this canonical track id",
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Only moments by this artist (case-insensitive)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.MomentsList,
			},
			{
				Name:  "delete",
				Usage: "Delete a saved moment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Moment ID to delete",
						Required: true,
					},
				},
				Action: r.MomentsDelete,
			},
		},
	}
}

// clusterCommand computes the total and core ranges of each group of moments
func clusterCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cluster",
		Usage: "Compute the total and most-overlapped ranges of each track's moments",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "by",
				Usage: "Group moments by canonical, source, artist or track",
				Value: "canonical",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, markdown or json",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "Read moments from a JSON file instead of the database",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to this path instead of stdout",
			},
			&cli.StringFlag{
				Name:  "service",
				Usage: "Only cluster moments from this service",
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Only cluster moments by this artist",
			},
			&cli.IntFlag{
				Name:  "min",
				Usage: "Skip clusters with fewer moments",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Width of the text timeline",
				Value: 48,
			},
		},
		Action: r.Cluster,
	}
}

// tracksCommand handles track source maintenance
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Maintain track source metadata",
		Commands: []*cli.Command{
			{
				Name:   "backfill",
				Usage:  "Assign canonical track ids to track sources and their moments",
				Action: r.TracksBackfill,
			},
			{
				Name:  "refresh",
				Usage: "Look up missing track durations with the configured metadata services",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "service",
						Usage: "Only refresh sources of this service",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of sources to refresh (0 for all)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent lookups (max 10)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Lookups per second",
					},
				},
				Action: r.TracksRefresh,
			},
			{
				Name:  "related",
				Usage: "Suggest tracks related to a source URL, with the number of moments saved for each",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "YouTube or Spotify URL to find related tracks for",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of suggestions (0 for the service default)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				},
				Action: r.TracksRelated,
			},
		},
	}
}
