// Command unieats запускает терминальный клиент и локальный дашборд UniEats.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := &cli{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	err := newRootCmd(c).ExecuteContext(ctx)
	if closeErr := c.close(); err == nil {
		err = closeErr
	}
	stop()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
