package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ebook_bot_updates_routed_total",
		Help: "Inbound Telegram updates by kind",
	}, []string{"kind"})

	ChargesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ebook_bot_charges_created_total",
		Help: "Crypto charges minted through the gateway by result",
	}, []string{"result"})

	IPNCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ebook_bot_ipn_callbacks_total",
		Help: "Gateway IPN callbacks by outcome",
	}, []string{"result"})

	Deliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ebook_bot_deliveries_total",
		Help: "Ebooks delivered after a confirmed payment",
	})
)
