// Package mqtt provides the optional MQTT events sink for the Media
// Node, carrying event source state over a broker as an alternative to
// the WebSocket push transport.
//
// State is published to medianode/events/{source_id}, retained so new
// subscribers immediately observe the latest value.
package mqtt
