// The doormon door monitoring system
//
// Features
//
// - Watches a magnetic door switch wired to a Raspberry Pi GPIO pin
//
// - Debounced open/closed detection
//
// - Daily opening counts and opening/closing times
//
// - Mirrors status and history to Google Cloud Firestore for the dashboard
//
// - Distributed message system (run the pieces over a network)
//
// - Lightweight, small memory footprint (runs on the Raspberry Pi)
//
// Services
//
// - sensor: reads the GPIO switch and emits debounced state events
//
// - monitor: door state tracking, daily aggregation and rollover
//
// - cloud: mirrors state to Firestore
//
// - api: REST API for dashboards and debugging
//
// - datalogger: logs events to disk
//
// - graphite: records state and opening series (graphs)
//
// - watchdog: alerts when devices or services go quiet
package doormon
