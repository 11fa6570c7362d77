package config

import "strings"

var ExampleYaml = `
devices:
  door.club:
    name: Club Room Door
    type: door
    source: gpio.21
    location: A0-35
protocols:
  gpio:
    "21": door.club
endpoints:
  mqtt:
    broker: tcp://127.0.0.1:1883
  redis: 127.0.0.1:6379
  api: http://localhost:8723
general:
  email:
    admin: admin@example.com
    from: doormon@example.com
    server: localhost:25
sensor:
  pin: 21
  bounce: 1s
  refresh: 1m
monitor:
  device: door.club
  timezone: Europe/Helsinki
  rollover: 1m
cloud:
  credentials: ~/.config/doormon/credentials.json
  collection: door_data
datalogger:
  path: ~/doormon/data
graphite:
  url: http://localhost:8080
  tcp: localhost:2003
watchdog:
  devices:
    door.club: 2m
    heartbeat.sensor: 5m
`

var ExampleConfig, _ = OpenReader(strings.NewReader(ExampleYaml))
