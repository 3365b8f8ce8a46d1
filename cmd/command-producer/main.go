package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	commandv1 "github.com/muhammadchandra19/economy/internal/domain/command/v1"
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	"github.com/muhammadchandra19/economy/internal/infrastructure/kafka/commandwriter"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/oklog/ulid/v2"
)

// generateCommands creates count commands. Most list new orders; the rest fill an
// order listed earlier in the batch on the same item.
func generateCommands(count int, items, users []string, basePrice int64, fillRatio float64) []*commandv1.Command {
	type listed struct {
		side  orderv1.Side
		index int
		num   int64
	}
	books := map[string][]listed{}
	next := map[string]int{}

	cmds := make([]*commandv1.Command, 0, count)
	for i := 0; i < count; i++ {
		item := items[rand.IntN(len(items))]
		itemType, itemID, _ := strings.Cut(item, "/")

		if open := books[item]; len(open) > 0 && rand.Float64() < fillRatio {
			j := rand.IntN(len(open))
			o := open[j]
			if open[j].num--; open[j].num == 0 {
				books[item] = append(open[:j], open[j+1:]...)
			}
			cmds = append(cmds, &commandv1.Command{
				ID:       ulid.Make().String(),
				Type:     commandv1.TypeFill,
				ItemType: itemType,
				ItemID:   itemID,
				Side:     o.side,
				Index:    o.index,
				Amount:   1,
			})
			continue
		}

		side := orderv1.SideSell
		price := basePrice + rand.Int64N(basePrice/2+1)
		if rand.IntN(2) == 0 {
			side = orderv1.SideBuy
			price = max(1, basePrice-rand.Int64N(basePrice/2+1))
		}
		num := 1 + rand.Int64N(5)

		key := item + "/" + string(side)
		books[item] = append(books[item], listed{side: side, index: next[key], num: num})
		next[key]++

		cmds = append(cmds, &commandv1.Command{
			ID:       ulid.Make().String(),
			Type:     commandv1.TypePlace,
			UserID:   users[rand.IntN(len(users))],
			ItemType: itemType,
			ItemID:   itemID,
			Side:     side,
			Price:    price,
			Num:      num,
		})
	}
	return cmds
}

func main() {
	var (
		brokers   = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic     = flag.String("topic", "economy.commands", "Kafka command topic")
		count     = flag.Int("count", 1000, "Number of commands to generate")
		delay     = flag.Duration("delay", 50*time.Millisecond, "Delay between commands")
		items     = flag.String("items", "boar/golden,boar/silver,badge/first", "Items to trade as type/id (comma-separated)")
		users     = flag.Int("users", 20, "Number of distinct users")
		basePrice = flag.Int64("base-price", 500, "Base price for orders")
		fillRatio = flag.Float64("fill-ratio", 0.3, "Share of commands that fill an existing order")
	)
	flag.Parse()

	log, err := logger.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	userIDs := make([]string, *users)
	for i := range userIDs {
		userIDs[i] = fmt.Sprintf("%d", 100000+i)
	}

	writer := commandwriter.NewWriter(strings.Split(*brokers, ","), *topic, log)
	defer writer.Close()

	cmds := generateCommands(*count, strings.Split(*items, ","), userIDs, *basePrice, *fillRatio)
	log.Info("sending commands",
		logger.Field{Key: "count", Value: len(cmds)},
		logger.Field{Key: "topic", Value: *topic},
	)

	ctx := context.Background()
	sent := 0
	for i, cmd := range cmds {
		if err := writer.Write(ctx, cmd); err != nil {
			log.Error(err, logger.Field{Key: "command_id", Value: cmd.ID})
			continue
		}
		sent++

		if (i+1)%100 == 0 || i == len(cmds)-1 {
			log.Info("progress",
				logger.Field{Key: "sent", Value: sent},
				logger.Field{Key: "total", Value: len(cmds)},
				logger.Field{Key: "last_type", Value: string(cmd.Type)},
			)
		}
		if i < len(cmds)-1 {
			time.Sleep(*delay)
		}
	}

	log.Info("done", logger.Field{Key: "sent", Value: sent})
}
