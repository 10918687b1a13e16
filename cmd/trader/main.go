package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"etf-trader/internal/interfaces"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	compressOldLogs(ctx)

	st, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}

	eng, err := initializeEngine(ctx, cfg, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize engine: %v\n", err)
		os.Exit(1)
	}

	// Graceful shutdown on Ctrl+C: summarize the day and flush journals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n🛑 Shutting down...")
		shutdownSystem(ctx)
		os.Exit(0)
	}()

	fmt.Println("╔══════════════════════════════════════════╗")
	fmt.Println("║        ETF TRADER — STRATEGY DESK        ║")
	fmt.Println("╚══════════════════════════════════════════╝")
	fmt.Printf("📂 Data file: %s\n", st.Path())

	runMenu(ctx, eng)

	shutdownSystem(ctx)
}

func printMenu() {
	fmt.Println()
	fmt.Println("───────────────────────────────────────────")
	fmt.Println("  1) Deviation ranking      8) Re-check volume filter")
	fmt.Println("  2) Propose buy            9) Volume report")
	fmt.Println("  3) Propose sell          10) Portfolio summary")
	fmt.Println("  4) Record buy            11) Performance statistics")
	fmt.Println("  5) Record sell           12) Rename symbol")
	fmt.Println("  6) Paste price lines     13) Bulk rename from CSV")
	fmt.Println("  7) Refresh prices        14) Rename history")
	fmt.Println("  0) Exit")
	fmt.Println("───────────────────────────────────────────")
}

func runMenu(ctx context.Context, eng interfaces.Engine) {
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		printMenu()
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		choice := strings.TrimSpace(sc.Text())
		switch choice {
		case "1":
			showRanking(ctx, eng)
		case "2":
			showBuyProposal(ctx, eng)
		case "3":
			showSellProposal(ctx, eng)
		case "4":
			recordBuy(ctx, eng, sc)
		case "5":
			recordSell(ctx, eng, sc)
		case "6":
			pastePriceLines(ctx, eng, sc)
		case "7":
			refreshPrices(ctx, eng, sc)
		case "8":
			recheckQualifications(ctx, eng, sc)
		case "9":
			showVolumeReport(ctx, eng)
		case "10":
			showPortfolio(ctx, eng)
		case "11":
			showStatistics(ctx, eng)
		case "12":
			renameSymbol(ctx, eng, sc)
		case "13":
			bulkRename(ctx, eng, sc)
		case "14":
			showRenameHistory(ctx, eng)
		case "0", "q", "exit":
			return
		case "":
			// blank line, reprint the menu
		default:
			fmt.Printf("Unknown choice: %q\n", choice)
		}
	}
}

func prompt(sc *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}
