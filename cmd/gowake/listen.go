package main

import (
	"net"
	"strconv"

	"github.com/fgeck/gowake/internal/services/listener"
	"github.com/fgeck/gowake/internal/services/transmit"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Listen flags.
var (
	listenAddress string
	listenPort    uint16
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Log magic packets received on a UDP port",
	Long: `Listen for magic packets and log the target hardware address and sender of
each one. Useful for checking that broadcasts reach a network segment.
Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().StringVarP(&listenAddress, "address", "a", "", "local address to bind (default all interfaces)")
	listenCmd.Flags().Uint16VarP(&listenPort, "port", "p", transmit.DefaultPort, "UDP port to listen on")
}

func runListen(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	address := net.JoinHostPort(listenAddress, strconv.Itoa(int(listenPort)))

	listenerSvc := listener.New(log.Logger)
	if err := listenerSvc.Listen(ctx, address, nil); err != nil {
		log.Error().Err(err).Str("address", address).Msg("listener failed")
		return err
	}
	return nil
}
