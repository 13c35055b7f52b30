package main

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/spf13/cobra"

	"zynqhal/config"
	"zynqhal/host/serial"
	"zynqhal/monitor"
)

func newServeCmd() *cobra.Command {
	var (
		listen string
		port   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the register monitor so a remote timerctl can drive this board",
		Long: `Serve exposes the local registers (normally --backend devmem on the board)
to a remote host. Accesses are limited to the timer and GPIO windows from the
board configuration. Use --port for a serial line or --listen for TCP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (listen == "") == (port == "") {
				return fmt.Errorf("need exactly one of --listen or --port")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Backend == config.BackendSerial {
				return fmt.Errorf("serve needs a local backend (sim or devmem)")
			}
			s, err := openSession(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.board != nil {
				// Let the simulated board run in real time
				stop := s.board.StartClock(time.Millisecond)
				defer stop()
			}

			if port != "" {
				return serveSerial(s, port)
			}
			return serveTCP(s, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "TCP address to listen on, e.g. :9000")
	cmd.Flags().StringVar(&port, "port", "", "Serial device to serve on")
	return cmd
}

func serveSerial(s *session, device string) error {
	portCfg := s.cfg.Serial.PortConfig()
	portCfg.Device = device

	p, err := serial.Open(portCfg)
	if err != nil {
		return err
	}
	defer p.Close()
	if err := p.Flush(); err != nil {
		log.Printf("flush %s: %v", device, err)
	}

	log.Printf("Serving %s registers on %s", s.cfg.Name, device)
	srv := monitor.NewServer(s.bus, s.cfg.Regions()...)
	return srv.Serve(p)
}

func serveTCP(s *session, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Printf("Serving %s registers on %s", s.cfg.Name, ln.Addr())

	// One client at a time; each gets a fresh protocol state
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		log.Printf("Client %s connected", conn.RemoteAddr())

		srv := monitor.NewServer(s.bus, s.cfg.Regions()...)
		if err := srv.Serve(conn); err != nil {
			log.Printf("Client %s: %v", conn.RemoteAddr(), err)
		}
		conn.Close()
		log.Printf("Client %s disconnected (%d reads, %d writes)", conn.RemoteAddr(), srv.Reads, srv.Writes)
	}
}
