// Package spimem switches the SC598 SPI2 controller into memory-mapped quad
// read mode, probes the attached flash and copies the boot image out of the
// memory-mapped window into RAM.
//
// # References:
//
// Analog Devices
//   - [ADSP-SC598-HRM]: ADSP-SC59x/ADSP-2159x Processor Hardware Reference, SPI chapter (https://www.analog.com/media/en/dsp-documentation/processor-manuals/adsp-sc59x-2159x-hrm.pdf)
//   - [u-boot-adi]: adi_spimem standalone application shipped with the ADI U-Boot tree (https://github.com/analogdevicesinc/u-boot)
//
// SPI Flash
//   - [IS25LP512]: ISSI IS25LP512M Serial Flash Memory datasheet (https://www.issi.com/WW/pdf/25LP-WP512M.pdf)
//   - [W25Q128]: W25Q128JV-DTR Winbond Serial Flash Memory (https://www.winbond.com/resource-files/W25Q128JV_DTR%20RevD%2012232024%20Plus.pdf)
//   - [N25Q32]: N25Q032A Micron Serial NOR Flash Memory datasheet (could not find the official public URL)
package spimem
