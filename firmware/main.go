//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcTemp machine.ADC
	uart    = machine.UART0

	// ADC averaging - running sum and count
	tempSum   uint32
	tempCount int

	ledOn bool

	// Timing
	lastADCRead time.Time
)

func main() {
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_TEMP_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcTemp = machine.ADC{Pin: PIN_TEMP_ADC}
	adcTemp.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	lastADCRead = time.Now()

	for {
		now := time.Now()

		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			readTempADC()
			lastADCRead = now
		}

		if tempCount >= NUM_SAMPLES {
			outputAveragedTemperature()
			tempSum = 0
			tempCount = 0
		}

		time.Sleep(100 * time.Microsecond)
	}
}

func readTempADC() {
	// Get returns a 16-bit scaled value regardless of resolution
	tempSum += uint32(adcTemp.Get())
	tempCount++
}

// millicelsius converts an averaged 16-bit ADC value to m°C.
func millicelsius(raw uint32) int32 {
	microvolts := int64(raw) * ADC_REFERENCE_MV * 1000 / 65536
	return int32((microvolts - TMP36_OFFSET_MV*1000) * 1000 / (TMP36_MV_PER_DEG_C * 1000))
}

func outputAveragedTemperature() {
	n := tempCount
	if n == 0 {
		n = 1 // Avoid division by zero
	}
	avg := tempSum / uint32(n)

	timestampMicros := time.Now().UnixNano() / 1000

	// Output format: "unix_micros,millicelsius\n"
	// Example: "1234567890123,21375\n"
	print(timestampMicros)
	print(",")
	print(millicelsius(avg))
	print("\n")

	ledOn = !ledOn
	PIN_LED.Set(ledOn)
}
