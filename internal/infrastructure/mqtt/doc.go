// Package mqtt provides the MQTT broker connection for pooldose-core.
//
// It wraps paho.mqtt.golang with connection management, automatic
// reconnection (including re-subscription), Last Will and Testament for
// offline detection, and topic builders for the pooldose topic hierarchy:
//
//	pooldose/state/{device}/{parameter}     retained decoded values
//	pooldose/command/{device}/{parameter}   inbound write commands
//	pooldose/availability/{device}          device reachability
//	pooldose/system/status                  daemon online/offline (LWT)
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.PublishRetained(mqtt.Topics{}.State(deviceID, "ph"), payload)
package mqtt
