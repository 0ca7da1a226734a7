package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dkeye/Collab/internal/board"
	"github.com/dkeye/Collab/internal/client"
)

// controls is the part of the session the command line drives.
type controls interface {
	ToggleShare(ctx context.Context) error
	StopShare() error
	ClearBoard() error
	Draw(points ...board.Point) error
	PointerUp() error
	SetColor(c string) error
	SetWidth(w float64) error
	UseEraser() error
	UsePen() error
	SendText(text string) error
	SendFile(name string, r io.Reader) error
	ToggleAudio() (bool, error)
	ToggleVideo() (bool, error)
	Status() (client.Status, error)
	Leave()
}

var errUsage = errors.New("usage")

const help = `/share              toggle screen share
/stop               stop screen share
/draw x y [x y...]  draw through points, pen stays down
/up                 lift the pen
/clear              clear the board
/color #rrggbb      pen color
/width n            pen width
/eraser, /pen       switch tool
/file path          send an image
/mute, /video       toggle microphone or camera
/status             show links and board
/leave              leave the room
anything else is sent as chat`

func runCommand(ctx context.Context, c controls, line string) error {
	if !strings.HasPrefix(line, "/") {
		return c.SendText(line)
	}
	fields := strings.Fields(line)
	args := fields[1:]
	switch fields[0] {
	case "/share":
		return c.ToggleShare(ctx)
	case "/stop":
		return c.StopShare()
	case "/clear":
		return c.ClearBoard()
	case "/draw":
		pts, err := parsePoints(args)
		if err != nil {
			return err
		}
		return c.Draw(pts...)
	case "/up":
		return c.PointerUp()
	case "/color":
		if len(args) != 1 {
			return fmt.Errorf("%w: /color #rrggbb", errUsage)
		}
		return c.SetColor(args[0])
	case "/width":
		if len(args) != 1 {
			return fmt.Errorf("%w: /width n", errUsage)
		}
		w, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("%w: /width n", errUsage)
		}
		return c.SetWidth(w)
	case "/eraser":
		return c.UseEraser()
	case "/pen":
		return c.UsePen()
	case "/file":
		if len(args) != 1 {
			return fmt.Errorf("%w: /file path", errUsage)
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return c.SendFile(filepath.Base(args[0]), f)
	case "/mute":
		live, err := c.ToggleAudio()
		if err == nil {
			fmt.Println("* microphone live:", live)
		}
		return err
	case "/video":
		live, err := c.ToggleVideo()
		if err == nil {
			fmt.Println("* camera live:", live)
		}
		return err
	case "/status":
		st, err := c.Status()
		if err != nil {
			return err
		}
		fmt.Printf("* %s in %s, sharing=%t, %d segments, %d streams\n", st.Self, st.Room, st.Sharing, st.Segments, len(st.Streams))
		for _, p := range st.Peers {
			fmt.Printf("*   %s %s\n", p.Remote, p.State)
		}
		return nil
	case "/leave":
		c.Leave()
		return nil
	case "/help":
		fmt.Println(help)
		return nil
	}
	return fmt.Errorf("unknown command %s, try /help", fields[0])
}

func parsePoints(args []string) ([]board.Point, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: /draw x y [x y...]", errUsage)
	}
	pts := make([]board.Point, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		x, errX := strconv.ParseFloat(args[i], 64)
		y, errY := strconv.ParseFloat(args[i+1], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: bad point %s %s", errUsage, args[i], args[i+1])
		}
		pts = append(pts, board.Point{X: x, Y: y})
	}
	return pts, nil
}
