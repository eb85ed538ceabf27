package main

import (
	"log"

	"github.com/umerali06/fixora-pro-sync/internal/common"
	"github.com/umerali06/fixora-pro-sync/internal/shopsvc"
)

func main() {
	cfg := common.LoadConfig()
	h := shopsvc.BuildServer(cfg)
	log.Printf("shop-svc listening on %s", cfg.HTTPAddr)
	h.Spin()
}
