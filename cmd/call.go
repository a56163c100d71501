package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/luma/litecache/client"
)

var (
	// The server to send the command to
	callAddr string

	callTimeout time.Duration
)

func init() {
	flags := CallCmd.Flags()

	flags.StringVar(&callAddr, "addr", "127.0.0.1:6379", "The address of the litecache server")
	flags.DurationVar(&callTimeout, "timeout", 5*time.Second, "How long to wait for a reply")
}

var CallCmd = &cobra.Command{
	Use:   "call VERB [ARGS...]",
	Short: "Send a single command to a litecache server",
	Long: `Send a single command to a litecache server and print the reply

Usage
	litecache call SET greeting hello
	litecache call GET greeting
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
		defer cancel()

		conn := client.New(nil)
		if err := conn.Connect(ctx, callAddr); err != nil {
			return err
		}
		defer conn.Disconnect()

		reply, err := conn.Do(ctx, args[0], args[1:]...)

		var replyErr *client.ReplyError
		if errors.As(err, &replyErr) {
			fmt.Fprintf(cmd.OutOrStdout(), "(error) %s\n", replyErr.Message)
			return nil
		}

		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}
