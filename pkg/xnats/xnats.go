// Package xnats recalc request bus. Publishers (importer, web layer) push
// RecalcReq messages, the worker consumes them and replays the owner's ledger.
package xnats

import (
	"encoding/json"

	"tradetracker/pkg/xetcd"
	"tradetracker/pkg/xlog"

	"github.com/nats-io/nats.go"
)

var logger = xlog.GetLogger()

// SubjectRecalc subject carrying RecalcReq messages on the LEDGER stream
const SubjectRecalc = "LEDGER.recalc"

// StreamName jetstream stream holding the recalc requests
const StreamName = "LEDGER"

// GetJetStream connects to the NATS server registered in etcd and returns a
// jetstream context
func GetJetStream() (js nats.JetStreamContext, err error) {
	natsUrl, err := xetcd.Get(xetcd.KeyNatsService())
	if err != nil {
		return
	}

	nc, err := nats.Connect(natsUrl)
	if err != nil {
		return
	}

	js, err = nc.JetStream(nats.PublishAsyncMaxPending(256))
	return
}

// EnsureStream creates the LEDGER stream when it does not exist yet
func EnsureStream(js nats.JetStreamContext) (err error) {
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{StreamName + ".*"},
	})
	return
}

// PublishRecalc sends one recalc request
func PublishRecalc(js nats.JetStreamContext, msg RecalcReq) (err error) {
	defer func() {
		if err != nil {
			logger.Errorf("PublishRecalc owner:%d failed with err:%s", msg.Owner, err)
		} else {
			logger.Debugf("PublishRecalc owner:%d, reason:%s", msg.Owner, msg.Reason)
		}
	}()

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	_, err = js.Publish(SubjectRecalc, data)
	return
}

// SubRecalc subscribes to recalc requests from startSeq+1 onwards and feeds
// them into ch
func SubRecalc(js nats.JetStreamContext, ch chan *nats.Msg, startSeq int64) (sub *nats.Subscription, err error) {
	return js.ChanSubscribe(StreamName+".*", ch,
		nats.StartSequence(uint64(startSeq+1)), nats.AckAll())
}
