package crazyflie

import (
	"log"
	"math"
	"sort"
	"strings"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/cache"
)

// PARAM_UINT8  (0x00 | (0x00<<2) | (0x01<<3)) = 0x8
// PARAM_UINT16 (0x01 | (0x00<<2) | (0x01<<3)) = 0x9
// PARAM_UINT32 (0x02 | (0x00<<2) | (0x01<<3)) = 0xA
// PARAM_INT8   (0x00 | (0x00<<2) | (0x00<<3)) = 0x0
// PARAM_INT16  (0x01 | (0x00<<2) | (0x00<<3)) = 0x1
// PARAM_INT32  (0x02 | (0x00<<2) | (0x00<<3)) = 0x2
// PARAM_FLOAT  (0x02 | (0x01<<2) | (0x00<<3)) = 0x6

var paramTypeToValue = map[uint8](func([]byte) interface{}){
	0x8: bytesToUint8,
	0x9: bytesToUint16,
	0xA: bytesToUint32,
	0x0: bytesToInt8,
	0x1: bytesToInt16,
	0x2: bytesToInt32,
	0x6: bytesToFloat32,
}

var paramTypeToBytes = map[uint8](func(interface{}) ([]byte, bool)){
	0x8: uint8ToBytes,
	0x9: uint16ToBytes,
	0xA: uint32ToBytes,
	0x0: int8ToBytes,
	0x1: int16ToBytes,
	0x2: int32ToBytes,
	0x6: float32ToBytes,
}

var paramTypeToSize = map[uint8]int{
	0x8: 1,
	0x9: 2,
	0xA: 4,
	0x0: 1,
	0x1: 2,
	0x2: 4,
	0x6: 4,
}

var paramTypeToName = map[uint8]string{
	0x8: "uint8",
	0x9: "uint16",
	0xA: "uint32",
	0x0: "int8",
	0x1: "int16",
	0x2: "int32",
	0x6: "float",
}

type paramItem struct {
	ID       uint16
	Datatype uint8
	Readonly bool
}

type ParamTocItem struct {
	Group  string `json:"group"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Access string `json:"access"` // "RW" or "RO"
}

func (cf *Crazyflie) paramSystemInit() {
	cf.paramNameToIndex = make(map[string]paramItem)
	cf.paramIndexToName = make(map[uint16]string)
}

func (cf *Crazyflie) paramTOCGetInfo() (int, uint32, error) {
	request := &ParamRequestGetInfo{}
	response := &ParamResponseGetInfo{}

	if err := cf.packetSendAndAwaitRetry(request, response, 5); err != nil {
		return 0, 0, err
	}

	cf.paramLock.Lock()
	defer cf.paramLock.Unlock()
	cf.paramCount = response.Count
	cf.paramCRC = response.CRC

	return cf.paramCount, cf.paramCRC, nil
}

// ParamTOCGetList fetches the parameter table of contents, from the cache
// when one for the same CRC exists.
func (cf *Crazyflie) ParamTOCGetList() error {
	count, crc, err := cf.paramTOCGetInfo()
	if err != nil {
		return err
	}

	nameToIndex := make(map[string]paramItem, count)
	if cf.tocCache != nil && cf.tocCache.Load(cache.KindParam, crc, &nameToIndex) == nil && len(nameToIndex) == count {
		cf.paramTOCSet(nameToIndex)
		log.Printf("%X cached param TOC size %d with CRC %X", cf.address, count, crc)
		return nil
	}

	nameToIndex = make(map[string]paramItem, count)
	for i := 0; i < count; i++ {
		request := &ParamRequestReadMeta{uint16(i)}
		response := &ParamResponseReadMeta{ID: uint16(i)}

		if err := cf.packetSendAndAwaitRetry(request, response, 5); err != nil {
			return err
		}
		nameToIndex[response.Name] = paramItem{response.ID, response.Datatype, response.ReadOnly}
	}
	cf.paramTOCSet(nameToIndex)

	log.Printf("%X loaded param TOC size %d with CRC %X", cf.address, count, crc)

	if cf.tocCache != nil {
		if err := cf.tocCache.Save(cache.KindParam, crc, nameToIndex); err != nil {
			log.Printf("%X error while caching: %s", cf.address, err)
		}
	}
	return nil
}

func (cf *Crazyflie) paramTOCSet(nameToIndex map[string]paramItem) {
	cf.paramLock.Lock()
	defer cf.paramLock.Unlock()
	cf.paramNameToIndex = nameToIndex
	cf.paramIndexToName = make(map[uint16]string, len(nameToIndex))
	for k, v := range nameToIndex {
		cf.paramIndexToName[v.ID] = k
	}
}

func (cf *Crazyflie) param(name string) (paramItem, bool) {
	cf.paramLock.Lock()
	defer cf.paramLock.Unlock()
	param, ok := cf.paramNameToIndex[name]
	return param, ok
}

// ParamGetList lists the parameter names, sorted.
func (cf *Crazyflie) ParamGetList() []string {
	cf.paramLock.Lock()
	defer cf.paramLock.Unlock()

	list := make([]string, 0, len(cf.paramNameToIndex))
	for name := range cf.paramNameToIndex {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

func (cf *Crazyflie) ParamGetToc() []ParamTocItem {
	cf.paramLock.Lock()
	defer cf.paramLock.Unlock()

	list := make([]ParamTocItem, 0, len(cf.paramNameToIndex))
	for name, idx := range cf.paramNameToIndex {
		group, variable, _ := strings.Cut(name, ".")
		item := ParamTocItem{Group: group, Name: variable, Type: paramTypeToName[idx.Datatype], Access: "RW"}
		if idx.Readonly {
			item.Access = "RO"
		}
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Group != list[j].Group {
			return list[i].Group < list[j].Group
		}
		return list[i].Name < list[j].Name
	})
	return list
}

func (cf *Crazyflie) ParamRead(name string) (interface{}, error) {
	param, ok := cf.param(name)
	if !ok {
		return nil, ErrorParamNotFound
	}
	decode, ok := paramTypeToValue[param.Datatype]
	if !ok {
		return nil, ErrorParamType
	}

	request := &ParamRequestReadValue{ID: param.ID}
	response := &ParamResponseReadValue{ID: param.ID}

	if err := cf.packetSendAndAwaitRetry(request, response, 3); err != nil {
		return nil, err
	}
	if len(response.Data) < paramTypeToSize[param.Datatype] {
		return nil, ErrorParamType
	}
	return decode(response.Data), nil
}

// ParamReadFloat64 reads any numeric parameter widened to float64.
func (cf *Crazyflie) ParamReadFloat64(name string) (float64, error) {
	v, err := cf.ParamRead(name)
	if err != nil {
		return 0, err
	}
	return toFloat64(v), nil
}

func (cf *Crazyflie) ParamWriteFromFloat64(name string, valf float64) error {
	param, ok := cf.param(name)
	if !ok {
		return ErrorParamNotFound
	}
	if math.IsNaN(valf) || math.IsInf(valf, 0) {
		return ErrorParamType
	}

	var val interface{}

	switch param.Datatype {
	case 0x8:
		val = uint8(valf)
	case 0x9:
		val = uint16(valf)
	case 0xA:
		val = uint32(valf)
	case 0x0:
		val = int8(valf)
	case 0x1:
		val = int16(valf)
	case 0x2:
		val = int32(valf)
	case 0x6:
		val = float32(valf)
	default:
		return ErrorParamType
	}

	return cf.ParamWrite(name, val)
}

// ParamWrite sets a parameter. val must have the parameter's exact Go type.
func (cf *Crazyflie) ParamWrite(name string, val interface{}) error {
	param, ok := cf.param(name)
	if !ok {
		return ErrorParamNotFound
	}
	if param.Readonly {
		return ErrorParamReadOnly
	}

	data, err := encodeParam(param.Datatype, val)
	if err != nil {
		return err
	}

	request := &ParamRequestWriteValue{param.ID, data}
	response := &ParamResponseWriteValue{param.ID}

	return cf.packetSendAndAwaitRetry(request, response, 3)
}

func encodeParam(datatype uint8, val interface{}) ([]byte, error) {
	encode, ok := paramTypeToBytes[datatype]
	if !ok {
		return nil, ErrorParamType
	}
	data, ok := encode(val)
	if !ok {
		return nil, ErrorParamType
	}
	return data, nil
}
