//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 10 // ADC read interval in milliseconds
	NUM_SAMPLES        = 50 // Number of samples to average, one line every 500ms

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// TMP36: 500mV offset at 0°C, 10mV per °C
	TMP36_OFFSET_MV    = 500
	TMP36_MV_PER_DEG_C = 10

	// TMP36 output pin
	PIN_TEMP_ADC = machine.A1

	// Status LED toggled on every line
	PIN_LED = machine.LED

	// Serial configuration
	// Format "unix_micros,millicelsius\n", e.g. "1234567890123456,-40000\n" = ~24 bytes max.
	// 2 lines/sec is far below what 115200 baud carries; the rate matches the host reader.
	UART_BAUD_RATE = 115200
)
