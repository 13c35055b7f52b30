package protocol

// Command IDs (host -> board)
const (
	CmdIdentify uint16 = 0x01 // identify
	CmdReadReg  uint16 = 0x02 // read_reg addr=%u
	CmdWriteReg uint16 = 0x03 // write_reg addr=%u value=%u
)

// Response IDs (board -> host)
const (
	RspIdentify  uint16 = 0x41 // identify_response version=%s
	RspRegValue  uint16 = 0x42 // reg_value addr=%u value=%u
	RspWriteDone uint16 = 0x43 // write_done addr=%u
	RspError     uint16 = 0x4F // error msg=%s
)
