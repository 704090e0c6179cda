package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt5 "github.com/golang-io/mqtt5"
	"github.com/golang-io/mqtt5/packet"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	c, err := mqtt5.New(
		mqtt5.URLOpt("mqtt://127.0.0.1:1883"),
		mqtt5.Subscription(
			packet.Subscription{TopicFilter: "+", MaximumQoS: 1},
			packet.Subscription{TopicFilter: "a/b/c", MaximumQoS: 1},
		),
		mqtt5.OnMessage(func(msg *packet.Message) {
			log.Printf("on: %s", msg.String())
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if c.State() == mqtt5.Connected {
				_, err := c.Publish(ctx, "12345", []byte(time.Now().Format("2006-01-02 15:04:05")), 0, false, nil)
				if err != nil {
					log.Printf("publish: %v", err)
				}
			}
			time.Sleep(time.Second)
		}
	})

	group.Go(func() error {
		defer cancel()
		ignore := make(chan os.Signal, 1)
		sign := make(chan os.Signal, 1)

		signal.Notify(ignore, syscall.SIGHUP)
		signal.Notify(sign, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-ctx.Done():
			log.Printf("ctx done")
			return ctx.Err()
		case sig := <-sign:
			return fmt.Errorf("got sign: %s", sig)
		}
	})

	group.Go(func() error {
		return c.Run(ctx)
	})

	if err := group.Wait(); err != nil {
		log.Printf("exiting: %v", err)
	}
}
