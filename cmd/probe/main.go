package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ecc1/nrf24"
	"github.com/ecc1/radio"
	"github.com/sirupsen/logrus"
)

var (
	configFile = flag.String("config", "", "YAML configuration `file`")
	listen     = flag.String("listen", "", "listen on pipe 1 at `address` (e.g. 41:41:41:41:41)")
	verbose    = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()
	log := logrus.New()
	cfg := nrf24.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = nrf24.LoadConfig(*configFile); err != nil {
			log.Fatal(err)
		}
	}
	cfg.Logger = log
	cfg.Verbose = cfg.Verbose || *verbose
	r, err := nrf24.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()
	ch, _ := r.Channel()
	rate, _ := r.DataRate()
	crc, _ := r.CRCLength()
	aw, _ := r.AddressWidth()
	fmt.Printf("channel: %d (%v MHz)\n", ch, radio.MegaHertz(r.Frequency()))
	fmt.Printf("data rate: %v\n", rate)
	fmt.Printf("crc: %v\n", crc)
	fmt.Printf("address width: %d\n", aw)
	if err := r.DumpRegisters(os.Stdout); err != nil {
		log.Fatal(err)
	}
	if *listen == "" {
		return
	}
	addr, err := nrf24.ParseAddress(*listen)
	if err != nil {
		log.Fatal(err)
	}
	if err := r.OpenReadingPipe(1, addr); err != nil {
		log.Fatal(err)
	}
	if err := r.StartListening(); err != nil {
		log.Fatal(err)
	}
	for {
		pipe, ok, err := r.DataAvailable()
		if err != nil {
			log.Fatal(err)
		}
		if !ok {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		fifo, _ := r.FIFOFlags()
		data, err := r.Read()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("pipe %d %v: % X\n", pipe, fifo.Names(), data)
	}
}
