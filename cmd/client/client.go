package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"nyx/internal/common"
	nyxNet "nyx/internal/net"
)

func main() {
	// 1. CLI Parameter Parsing
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the exchange server")
	owner := flag.String("owner", "", "Owner username (compulsory)")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel']")

	// Order Parameters
	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	tifStr := flag.String("tif", "gtc", "Time in force: 'gtc' or 'ioc'")
	price := flag.String("price", "100", "Limit price (decimal string)")
	qtyStr := flag.String("qty", "10", "Quantity or comma-separated list (e.g. 10,20,50)")

	// Cancel Parameters
	orderUUID := flag.String("uuid", "", "UUID of the order to cancel")

	flag.Parse()

	// Validation
	if *owner == "" {
		fmt.Println("Error: -owner is compulsory.")
		flag.Usage()
		os.Exit(1)
	}

	// Connect to Server
	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s as '%s'\n", *serverAddr, *owner)

	// Start Listening for Reports (Async)
	go readReports(conn)

	// Prepare Enums using 'common' package
	side := common.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = common.Sell
	}

	tif := common.GTC
	if strings.ToLower(*tifStr) == "ioc" {
		tif = common.IOC
	}

	// Execute Action
	switch strings.ToLower(*action) {
	case "place":
		for _, qty := range strings.Split(*qtyStr, ",") {
			message := nyxNet.NewOrderMessage{
				Side:        side,
				TimeInForce: tif,
				Price:       *price,
				Quantity:    strings.TrimSpace(qty),
				Owner:       *owner,
			}
			if _, err := conn.Write(message.Serialize()); err != nil {
				log.Printf("Failed to place order (qty: %s): %v", qty, err)
				continue
			}
			fmt.Printf("-> Sent %s %s order: %s @ %s\n",
				strings.ToUpper(*sideStr), tif, qty, *price)
			// Small sleep so the server reads each message as its own
			// frame.
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if len(*orderUUID) != nyxNet.OrderUUIDLen {
			log.Fatalf("Error: -uuid must be a %d character order uuid", nyxNet.OrderUUIDLen)
		}
		message := nyxNet.CancelOrderMessage{OrderUUID: *orderUUID}
		if _, err := conn.Write(message.Serialize()); err != nil {
			log.Printf("Failed to send cancel request: %v", err)
		} else {
			fmt.Printf("-> Sent cancel request for UUID: %s\n", *orderUUID)
		}

	default:
		log.Fatalf("Unknown action: %s", *action)
	}

	// Keep the client alive to receive execution reports
	fmt.Println("\nListening for reports... (Press Ctrl+C to exit)")
	select {}
}

// readReports prints each newline-delimited event envelope the server
// sends back.
func readReports(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		fmt.Printf("<- %s\n", scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Report stream closed: %v", err)
	}
}
