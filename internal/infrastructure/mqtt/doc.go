// Package mqtt provides MQTT client connectivity for the GreenGiant backend.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// GreenGiant uses MQTT as an alternative ingestion path from the Pi relay.
// The relay publishes sensor batches, automation events, heartbeats and
// alerts under greengiant/device/{channel}; the backend subscribes and
// routes them through the same ingestion service as the HTTP endpoints.
//
//	Pi Relay → MQTT Broker → GreenGiant Backend
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all device telemetry
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceTopics(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a shutdown notice
//	client.Publish(mqtt.Topics{}.SystemShutdown(), []byte(`{"reason":"maintenance"}`), 1, false)
package mqtt
