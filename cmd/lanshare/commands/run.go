package commands

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/RushitSolanki/lanshare/internal/config"
	"github.com/RushitSolanki/lanshare/internal/discovery"
	"github.com/RushitSolanki/lanshare/internal/relay"
	"github.com/RushitSolanki/lanshare/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the discovery service",
	Long: `Run starts presence broadcasting, peer discovery and the stale-peer
sweeper, then accepts interactive commands on stdin:

  peers              list currently known peers
  id                 show this process's identity
  send <id> <text>   send text to one peer
  sendall <text>     send text to every known peer
  quit               stop the service and exit`,
	RunE: runService,
}

func init() {
	runCmd.Flags().Uint16("port", 0, "UDP discovery port (overrides config)")
	runCmd.Flags().String("relay", "", "WebSocket relay listen address, e.g. 127.0.0.1:7879 (overrides config)")
}

func runService(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetUint16("port"); port != 0 {
		cfg.Port = port
	}
	if relayAddr, _ := cmd.Flags().GetString("relay"); relayAddr != "" {
		cfg.RelayAddr = relayAddr
	}
	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sink discovery.TextSink
	if cfg.RelayAddr != "" {
		hub := relay.NewHub()
		go hub.Run(ctx)
		go serveRelay(cfg.RelayAddr, hub)
		sink = hub
	}

	service := discovery.NewService(discovery.Config{
		Port:              cfg.Port,
		BroadcastInterval: cfg.BroadcastInterval(),
		SweepInterval:     cfg.SweepInterval(),
		StaleTimeout:      cfg.StaleTimeout(),
		Sink:              sink,
	})
	if err := service.Start(); err != nil {
		return err
	}
	defer service.Stop()

	ownID, _ := service.OwnID()
	fmt.Println(ui.Successf("discovery running on UDP port %d", cfg.Port))
	fmt.Printf("This peer: %s\n", ownID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go readLines(lines)

	for {
		select {
		case sig := <-sigCh:
			logrus.Infof("received %s, shutting down", sig)
			return nil
		case line, ok := <-lines:
			if !ok {
				// stdin closed (e.g. running under a supervisor): stay up
				// until a signal arrives
				<-sigCh
				return nil
			}
			if quit := dispatch(service, line); quit {
				return nil
			}
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func serveRelay(addr string, hub *relay.Hub) {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	logrus.Infof("relay: serving WebSocket fan-out on ws://%s/ws", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logrus.Errorf("relay: server stopped: %v", err)
	}
}

func readLines(out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

// dispatch handles one interactive command, returning true on quit
func dispatch(service *discovery.Service, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "peers":
		fmt.Print(ui.RenderPeerTable(service.Peers()))
		fmt.Printf("%d peers online\n", service.PeerCount())

	case "id":
		if id, ok := service.OwnID(); ok {
			fmt.Println(id)
		}

	case "send":
		if len(fields) < 3 {
			fmt.Println(ui.Errorf("usage: send <id> <text>"))
			return false
		}
		target := fields[1]
		text := strings.TrimSpace(strings.TrimPrefix(line, "send "+target))
		if err := service.SendText(target, text); err != nil {
			fmt.Println(ui.Errorf("%v", err))
		} else {
			fmt.Println(ui.Successf("sent to %s", target))
		}

	case "sendall":
		text := strings.TrimSpace(strings.TrimPrefix(line, "sendall"))
		if text == "" {
			fmt.Println(ui.Errorf("usage: sendall <text>"))
			return false
		}
		if err := service.SendText("", text); err != nil {
			fmt.Println(ui.Errorf("%v", err))
		} else {
			fmt.Println(ui.Successf("sent to %d peers", service.PeerCount()))
		}

	case "quit", "exit":
		return true

	default:
		fmt.Println(ui.Errorf("unknown command %q", fields[0]))
	}
	return false
}
