// Package kafka connects transductions to Kafka topics via segmentio/kafka-go.
//
// MessageSource turns a reader into a source.Iterator so a topic can be fed
// through any async transducer; Publishing is a terminal reducer writing
// every item it receives.
//
//	r, _ := kafka.NewReader(cfg, "orders", log)
//	defer r.Close()
//	msgs := kafka.MessageSource(r, kafka.WithIdleTimeout(5*time.Second), kafka.WithKeepOpen())
//	out, err := engine.RunAsync(ctx, "top-orders", kafka.DecodeJSON(msgs))
//	// deliver out, then
//	err = msgs.Commit(ctx)
//
// Offsets are committed at-least-once: nothing is committed while a run is
// reading, so a run or delivery that fails leaves its messages to be read
// again by the consumer group.
package kafka
