package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"famdir/internal/config"
	"famdir/internal/connectors"
	"famdir/internal/listener"
	"famdir/internal/notify"
	"famdir/internal/pipeline"
	"famdir/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "build":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		src := fs.String("src", "", "roster export (.xlsx or HTML table)")
		out := fs.String("out", cfg.OutputDir, "output directory")
		mail := fs.Bool("mail", false, "mail the outputs to DIRECTORY_RECIPIENTS")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*src) == "" {
			must(fmt.Errorf("--src is required"))
		}
		processor := pipeline.NewProcessingService(db, cfg)
		res, err := processor.ProcessFile(*src, *out)
		must(err)
		printResult(res)
		if *mail {
			mailer, err := notify.NewMailer(cfg)
			must(err)
			must(mailer.Send(res))
			fmt.Printf("mailed to %s\n", strings.Join(cfg.DirectoryRecipients, ", "))
		}
	case "roster:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.ListenerProvider, "gmail|imap")
		label := fs.String("label", cfg.ListenerLabel, "mailbox/label")
		max := fs.Int("max", cfg.ListenerFetchMax, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := listener.MakeConnector(cfg, strings.ToLower(strings.TrimSpace(*provider)))
		must(err)
		fetch := connectors.NewFetchService(db, cfg.InboxDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("roster fetch done provider=%s fetched=%d rosters=%d skipped=%d\n", *provider, result.Fetched, result.Rosters, result.Skipped)
	case "roster:build-pending":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg)
		results, err := processor.ProcessPending(*batch)
		must(err)
		for _, res := range results {
			printResult(res)
		}
		fmt.Printf("built pending exports=%d\n", len(results))
	case "roster:listen":
		s := listener.NewService(db, cfg)
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		must(s.Run(ctx))
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, run := range runs {
			fmt.Printf("%s %s students=%d contacts=%d warnings=%d source=%s\n",
				run.CreatedAt, run.ID, run.Counts["students"], run.Counts["contacts"], run.WarningCount, run.Source)
		}
	case "runs:warnings":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "run id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*id) == "" {
			must(fmt.Errorf("--id is required"))
		}
		warnings, err := db.RunWarnings(*id)
		must(err)
		for _, w := range warnings {
			fmt.Printf("warning line=%d student=%q %s\n", w.LineNo, w.Student, w.Message)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func printResult(res pipeline.ProcessResult) {
	report := res.Result.Report
	fmt.Printf("build done run=%s students=%d accepted=%d withheld=%d skipped=%d contacts=%d warnings=%d\n",
		res.RunID, report.Students, report.Accepted, report.Withheld, report.Skipped, len(res.Contacts), len(report.Warnings))
	for _, w := range report.Warnings {
		fmt.Printf("warning line=%d student=%q %s\n", w.LineNo, w.Student, w.Message)
	}
	if len(res.NewHubs) > 0 {
		fmt.Printf("create these hubs before loading the import: %s\n", strings.Join(res.NewHubs, ", "))
	}
	for _, path := range res.Outputs {
		fmt.Printf("wrote %s\n", path)
	}
}

func usage() {
	fmt.Println("usage: famdir <command>")
	fmt.Println("commands:")
	fmt.Println("  build --src=roster.xlsx [--out=./out] [--mail]")
	fmt.Println("  roster:fetch --provider=gmail|imap --label=INBOX --max=20")
	fmt.Println("  roster:build-pending [--batch=20]")
	fmt.Println("  roster:listen")
	fmt.Println("  runs:list [--limit=20]")
	fmt.Println("  runs:warnings --id=<run id>")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
