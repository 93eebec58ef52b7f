// Package kafka is the Kafka transport of the bus, built on segmentio/kafka-go.
//
// A receive endpoint's queue name is the topic it reads. All endpoints of a
// bus read in one consumer group: Settings.GroupID, else the service name
// passed to CreateBus, else "bushost". Each endpoint runs as many workers as
// its consumer limit on a shared reader. Offsets are committed after the
// handlers ran, whether they succeeded or not, so a failed message is logged
// and skipped. With more than one worker, offsets of a partition may be
// committed out of order; use a consumer limit of 1 where that matters.
//
// Publish writes to the topic named by the destination. The message ID is the
// record key and is also written to the "message-id" header together with
// "content-type". Other headers must be strings, byte slices, Stringers or
// scalars.
//
// Configuration (keys under "Kafka."):
//
//	Brokers, GroupID, ClientID, MinBytes, MaxBytes, MaxWait, StartOffset,
//	RequiredAcks, Compression, WriteTimeout, MaxAttempts, EnableTLS,
//	InsecureSkipVerify, CACertPath, ClientCertPath, ClientKeyPath,
//	SASLMechanism, SASLUsername, SASLPassword, AllowAutoTopicCreation,
//	ContentType
//
// Registration without fx:
//
//	services := container.NewCollection()
//	_ = kafka.AddKafka(services)
//
// With fx, include kafka.FXModule next to hosting.FXModule.
package kafka
