package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dkeye/Collab/internal/adapters/rtc"
	"github.com/dkeye/Collab/internal/adapters/wsclient"
	"github.com/dkeye/Collab/internal/client"
	"github.com/dkeye/Collab/internal/config"
	"github.com/dkeye/Collab/internal/domain"
	"github.com/dkeye/Collab/internal/media"
	"github.com/dkeye/Collab/internal/peer"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a room",
	Long: `Join a room and stay until interrupted or /leave.

Examples:
  collab join --room standup --user ann --camera cam.ivf --microphone mic.ogg
  collab join --room standup --screen slides.ivf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadClient(cmd.Flags())
		if err != nil {
			return err
		}
		config.SetupLogger(cfg.LogLevel)
		return join(cmd.Context(), cfg)
	},
}

func init() {
	f := joinCmd.Flags()
	f.String("server", "", "relay websocket address")
	f.String("room", "", "room to join")
	f.String("user", "", "display name used in chat")
	f.String("camera", "", "IVF file played as the camera")
	f.String("microphone", "", "Ogg/Opus file played as the microphone")
	f.String("screen", "", "IVF file played once as the screen capture")
	f.Duration("settle-delay", 0, "wait before calling a newly joined member")
	f.StringSlice("ice-servers", nil, "STUN/TURN server URLs")
	f.String("log-level", "", "debug, info, warn or error")
}

func join(parent context.Context, cfg *config.ClientConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	room := domain.RoomID(cfg.Room)
	if err := room.Validate(); err != nil {
		return err
	}

	rc, err := wsclient.Dial(ctx, cfg.Server)
	if err != nil {
		return err
	}

	streamID := "collab-" + uuid.NewString()
	local, errs := media.Open(ctx, media.Options{Camera: cfg.Camera, Microphone: cfg.Microphone, StreamID: streamID})
	for _, err := range errs {
		log.Warn().Err(err).Str("module", "cli").Msg("device unavailable, joining without it")
	}
	capturer := media.FileCapturer{Path: cfg.Screen, StreamID: streamID}

	s := client.New(rc, func(notify func(peer.Event)) peer.Dialer {
		return rtc.NewDialer(cfg.ICEServers, rc, notify)
	}, local, capturer, client.Options{Room: room, User: cfg.User, SettleDelay: cfg.SettleDelay})

	fmt.Printf("room link: %s\n", domain.RoomLink(httpBase(cfg.Server), room))

	go printNotices(s)
	go readCommands(ctx, s, os.Stdin)

	return s.Run(ctx)
}

// httpBase turns the relay websocket address into the page origin.
func httpBase(server string) string {
	u, err := url.Parse(server)
	if err != nil {
		return server
	}
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String()
}

func printNotices(s *client.Session) {
	for {
		select {
		case n := <-s.Notices():
			switch n.Kind {
			case client.NoticeChat:
				fmt.Println(formatEntry(n))
			case client.NoticeWarn:
				fmt.Println("! " + n.Text)
			default:
				fmt.Println("* " + n.Text)
			}
		case <-s.Done():
			return
		}
	}
}

func formatEntry(n client.Notice) string {
	if n.Entry == nil {
		return n.Text
	}
	m := n.Entry.Message
	who := m.User
	if n.Entry.Mine {
		who = "you"
	}
	if m.Type == domain.ChatImage {
		return fmt.Sprintf("<%s> [image %d bytes]", who, len(m.FileData))
	}
	return fmt.Sprintf("<%s> %s", who, m.Text)
}

func readCommands(ctx context.Context, s *client.Session, in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := runCommand(ctx, s, line); err != nil {
			fmt.Println("! " + err.Error())
		}
		select {
		case <-s.Done():
			return
		default:
		}
	}
}
