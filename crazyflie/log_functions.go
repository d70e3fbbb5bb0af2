package crazyflie

import (
	"log"
	"math"
	"sort"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/cache"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crtp"
)

var logTypeToValue = map[uint8](func([]byte) interface{}){
	1: bytesToUint8,
	2: bytesToUint16,
	3: bytesToUint32,
	4: bytesToInt8,
	5: bytesToInt16,
	6: bytesToInt32,
	7: bytesToFloat32,
	8: bytesToFloat16,
}

var logTypeToSize = map[uint8]int{
	1: 1,
	2: 2,
	3: 4,
	4: 1,
	5: 2,
	6: 4,
	7: 4,
	8: 2,
}

type logItem struct {
	ID       uint16
	Datatype uint8
}

// LogHandler receives one decoded sample of a log block, keyed by variable
// name. timestamp is the firmware tick in milliseconds. It runs on the
// radio thread and must not block.
type LogHandler func(timestamp uint32, values map[string]float64)

type logBlock struct {
	ID        uint8
	Names     []string
	Variables []logItem
	Handler   LogHandler
}

func (cf *Crazyflie) logSystemInit() {
	cf.logNameToIndex = make(map[string]logItem)
	cf.logIndexToName = make(map[uint16]string)
	cf.logBlocks = make(map[uint8]*logBlock)

	cf.callbackAdd(crtp.PortLog, cf.handleLogBlock)
}

func (cf *Crazyflie) handleLogBlock(resp []byte) {
	if crtp.Header(resp[0]).Channel() != logChannelData {
		return
	}

	data := &LogResponseData{}
	if err := data.LoadFromBytes(resp); err != nil {
		return
	}

	cf.logLock.Lock()
	block, ok := cf.logBlocks[data.BlockID]
	cf.logLock.Unlock()
	if !ok {
		log.Printf("%X warning: unknown block id=%d", cf.address, data.BlockID)
		return
	}

	values, err := block.decode(data.Data)
	if err != nil {
		log.Printf("%X warning: block %d: %s", cf.address, block.ID, err)
		return
	}
	if block.Handler != nil {
		block.Handler(data.Timestamp, values)
	}
}

func (block *logBlock) decode(b []byte) (map[string]float64, error) {
	values := make(map[string]float64, len(block.Variables))
	idx := 0
	for i, variable := range block.Variables {
		size := logTypeToSize[variable.Datatype]
		if idx+size > len(b) {
			return nil, crtp.ErrorPacketTooShort
		}
		values[block.Names[i]] = toFloat64(logTypeToValue[variable.Datatype](b[idx : idx+size]))
		idx += size
	}
	return values, nil
}

func (cf *Crazyflie) logTOCGetInfo() (int, uint32, error) {
	request := &LogRequestGetInfo{}
	response := &LogResponseGetInfo{}

	if err := cf.packetSendAndAwaitRetry(request, response, 5); err != nil {
		return 0, 0, err
	}

	cf.logLock.Lock()
	defer cf.logLock.Unlock()
	cf.logCount = response.Count
	cf.logCRC = response.CRC
	cf.logMaxPacket = response.MaxPacket
	cf.logMaxOps = response.MaxOps

	return cf.logCount, cf.logCRC, nil
}

// LogTOCGetList fetches the log table of contents, from the cache when
// one for the same CRC exists.
func (cf *Crazyflie) LogTOCGetList() error {
	count, crc, err := cf.logTOCGetInfo()
	if err != nil {
		return err
	}

	nameToIndex := make(map[string]logItem, count)
	if cf.tocCache != nil && cf.tocCache.Load(cache.KindLog, crc, &nameToIndex) == nil && len(nameToIndex) == count {
		cf.logTOCSet(nameToIndex)
		log.Printf("%X cached log TOC size %d with CRC %X", cf.address, count, crc)
		return nil
	}

	nameToIndex = make(map[string]logItem, count)
	for i := 0; i < count; i++ {
		request := &LogRequestGetItem{uint16(i)}
		response := &LogResponseGetItem{ID: uint16(i)}

		if err := cf.packetSendAndAwaitRetry(request, response, 5); err != nil {
			return err
		}
		nameToIndex[response.Name] = logItem{response.ID, response.Datatype}
	}
	cf.logTOCSet(nameToIndex)

	log.Printf("%X loaded log TOC size %d with CRC %X", cf.address, count, crc)

	if cf.tocCache != nil {
		if err := cf.tocCache.Save(cache.KindLog, crc, nameToIndex); err != nil {
			log.Printf("%X error while caching: %s", cf.address, err)
		}
	}
	return nil
}

func (cf *Crazyflie) logTOCSet(nameToIndex map[string]logItem) {
	cf.logLock.Lock()
	defer cf.logLock.Unlock()
	cf.logNameToIndex = nameToIndex
	cf.logIndexToName = make(map[uint16]string, len(nameToIndex))
	for k, v := range nameToIndex {
		cf.logIndexToName[v.ID] = k
	}
}

// LogVariables lists the loggable variable names, sorted.
func (cf *Crazyflie) LogVariables() []string {
	cf.logLock.Lock()
	defer cf.logLock.Unlock()
	names := make([]string, 0, len(cf.logNameToIndex))
	for name := range cf.logNameToIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogBlockClearAll deletes every block on the Crazyflie.
func (cf *Crazyflie) LogBlockClearAll() error {
	request := &LogRequestReset{}
	response := &LogResponseBlockControl{Command: logControlReset}

	err := cf.PacketSendAndAwaitResponse(request, response, DEFAULT_RESPONSE_TIMEOUT)
	if err == nil {
		cf.logLock.Lock()
		cf.logBlocks = make(map[uint8]*logBlock)
		cf.logLock.Unlock()
	}
	return err
}

// LogBlockAdd creates a block holding variables, each delivered to handler
// once the block is started.
func (cf *Crazyflie) LogBlockAdd(variables []string, handler LogHandler) (uint8, error) {
	cf.logLock.Lock()

	block := &logBlock{
		Names:     append([]string(nil), variables...),
		Variables: make([]logItem, len(variables)),
		Handler:   handler,
	}

	size := 0
	for i, name := range variables {
		item, ok := cf.logNameToIndex[name]
		if !ok {
			cf.logLock.Unlock()
			return 0, ErrorLogBlockOrItemNotFound
		}
		block.Variables[i] = item
		size += logTypeToSize[item.Datatype]
	}
	if size > crtp.MaxPayload-4 || 2+3*len(variables) > crtp.MaxPayload {
		cf.logLock.Unlock()
		return 0, ErrorLogBlockTooLong
	}

	// find a free logblock id
	blockid := -1
	for id := 0; id < 256; id++ {
		if _, ok := cf.logBlocks[uint8(id)]; !ok {
			blockid = id
			break
		}
	}
	if blockid < 0 {
		cf.logLock.Unlock()
		return 0, ErrorLogBlockNoMemory
	}
	block.ID = uint8(blockid)
	// reserve the id; data may arrive before the response is processed
	cf.logBlocks[block.ID] = block
	cf.logLock.Unlock()

	request := &LogRequestBlockCreate{block.ID, block.Variables}
	response := &LogResponseBlockControl{Command: logControlCreateBlock, BlockID: block.ID}

	if err := cf.PacketSendAndAwaitResponse(request, response, DEFAULT_RESPONSE_TIMEOUT); err != nil {
		cf.logLock.Lock()
		delete(cf.logBlocks, block.ID)
		cf.logLock.Unlock()
		return 0, err
	}
	return block.ID, nil
}

func (cf *Crazyflie) logBlockExists(blockid uint8) bool {
	cf.logLock.Lock()
	defer cf.logLock.Unlock()
	_, ok := cf.logBlocks[blockid]
	return ok
}

// LogBlockStart starts streaming a block every period, rounded to the
// nearest 10 ms.
func (cf *Crazyflie) LogBlockStart(blockid uint8, period time.Duration) error {
	if !cf.logBlockExists(blockid) {
		return ErrorLogBlockOrItemNotFound
	}

	quantizedPeriod := math.Floor(period.Seconds()*100.0 + 0.5) // nearest multiple of 10ms
	if quantizedPeriod < 1 {
		return ErrorLogBlockPeriodTooShort
	}
	if quantizedPeriod > 255 {
		quantizedPeriod = 255
	}

	request := &LogRequestBlockStart{blockid, uint8(quantizedPeriod)}
	response := &LogResponseBlockControl{Command: logControlStartBlock, BlockID: blockid}
	return cf.PacketSendAndAwaitResponse(request, response, DEFAULT_RESPONSE_TIMEOUT)
}

func (cf *Crazyflie) LogBlockStop(blockid uint8) error {
	if !cf.logBlockExists(blockid) {
		return ErrorLogBlockOrItemNotFound
	}

	request := &LogRequestBlockStop{blockid}
	response := &LogResponseBlockControl{Command: logControlStopBlock, BlockID: blockid}
	return cf.PacketSendAndAwaitResponse(request, response, DEFAULT_RESPONSE_TIMEOUT)
}

func (cf *Crazyflie) LogBlockDelete(blockid uint8) error {
	request := &LogRequestBlockDelete{blockid}
	response := &LogResponseBlockControl{Command: logControlDeleteBlock, BlockID: blockid}

	err := cf.PacketSendAndAwaitResponse(request, response, DEFAULT_RESPONSE_TIMEOUT)
	cf.logLock.Lock()
	delete(cf.logBlocks, blockid) // a noop if it doesn't exist
	cf.logLock.Unlock()
	return err
}
