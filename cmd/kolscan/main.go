package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"kolscan/internal/cmdlog"
	"kolscan/internal/config"
	"kolscan/internal/detect"
	"kolscan/internal/logging"
	"kolscan/internal/metrics"
	"kolscan/internal/scan"
	"kolscan/internal/store/scanstore"
	"kolscan/internal/tgclient"
	"kolscan/internal/track"
)

func main() {
	_ = godotenv.Load()
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	var err error
	switch cmd {
	case "init":
		cmdInit()
	case "scan":
		err = cmdlog.Run("scan", cmdScan)
	case "history":
		err = cmdlog.Run("history", cmdHistory)
	case "track":
		err = cmdlog.Run("track", cmdTrack)
	case "audit":
		err = cmdlog.Run("audit", cmdAudit)
	default:
		printHelp()
	}
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Usage: kolscan <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init      Create a config file at ./kolscan.yaml")
	fmt.Println("  scan      Analyze a channel and persist the report")
	fmt.Println("  history   Show past scans for a channel")
	fmt.Println("  track     Collect a user's recent posts across channels")
	fmt.Println("  audit     Print per-participant KOL metrics for a channel")
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if cfg.Gateway.BaseURL == "" {
		fmt.Println("warning: missing TG_GATEWAY_URL; API calls will fail")
	}
	return cfg, nil
}

func newClient(cfg config.Config) *tgclient.HTTPClient {
	return tgclient.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.Token)
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./kolscan.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	if err := config.Save(*path, config.Default()); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	fmt.Println("Config written to:", abs)
}

func cmdScan() error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	cfgPath := fs.String("config", "./kolscan.yaml", "config path")
	channel := fs.String("channel", "", "channel username or id")
	_ = fs.Parse(os.Args[2:])
	if *channel == "" {
		return fmt.Errorf("missing -channel")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	metrics.StartServer(cfg.Metrics.Addr)

	orch := scan.NewOrchestrator(newClient(cfg), cfg.Criteria)
	orch.MessageLimit = cfg.Scan.MessageLimit
	orch.RecentParticipantLimit = cfg.Scan.RecentParticipantLimit
	orch.PostFetchWindow = cfg.Scan.PostFetchWindow
	orch.PostLimit = cfg.Scan.PostLimit
	report, err := orch.ScanChannel(context.Background(), *channel)
	if err != nil {
		return err
	}

	db, err := scanstore.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	id, err := db.Save(context.Background(), report)
	if err != nil {
		return err
	}
	logging.Info("scan_saved", map[string]any{"scan_id": id, "channel": *channel})

	return printJSON(report)
}

func cmdHistory() error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	cfgPath := fs.String("config", "./kolscan.yaml", "config path")
	channel := fs.String("channel", "", "channel username")
	limit := fs.Int("limit", 5, "max records")
	_ = fs.Parse(os.Args[2:])
	if *channel == "" {
		return fmt.Errorf("missing -channel")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	db, err := scanstore.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	scans, err := db.History(context.Background(), *channel, *limit)
	if err != nil {
		return err
	}
	for _, s := range scans {
		fmt.Printf("%s  %s  members=%d kols=%d bots=%d enhanced=%v\n",
			s.ScannedAt.Format("2006-01-02 15:04"), s.ID,
			s.Report.MemberCount, s.Report.KOLCount, s.Report.BotCount, s.Report.EnhancedData)
	}
	return nil
}

func cmdTrack() error {
	fs := flag.NewFlagSet("track", flag.ExitOnError)
	cfgPath := fs.String("config", "./kolscan.yaml", "config path")
	user := fs.String("user", "", "username to track")
	_ = fs.Parse(os.Args[2:])
	if *user == "" {
		return fmt.Errorf("missing -user")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	res, err := track.UserPosts(context.Background(), newClient(cfg), *user, cfg.Track.Channels, cfg.Track.PerChannelLimit)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func cmdAudit() error {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	cfgPath := fs.String("config", "./kolscan.yaml", "config path")
	channel := fs.String("channel", "", "channel username or id")
	_ = fs.Parse(os.Args[2:])
	if *channel == "" {
		return fmt.Errorf("missing -channel")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	client := newClient(cfg)
	ctx := context.Background()
	participants, err := client.GetParticipants(ctx, *channel, tgclient.ParticipantFilter{
		Role:  tgclient.RoleRecent,
		Limit: cfg.Scan.RecentParticipantLimit,
	})
	if err != nil {
		return err
	}
	detector := detect.NewDetector(client, cfg.Criteria)
	detector.FetchWindow = cfg.Scan.PostFetchWindow
	detector.PostLimit = cfg.Scan.PostLimit
	for _, m := range detector.Analyze(ctx, *channel, participants) {
		fmt.Printf("@%s influence=%.2f engagement=%.2f%% bot=%.2f quality=%.2f tags=%v\n",
			m.Username, m.InfluenceScore, m.EngagementRate, m.BotProbability,
			m.ContentQualityScore, m.SpecialtyTags)
	}
	return nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
