package dicom

// File meta and general tags.
var (
	TransferSyntaxUID = NewTag(0x0002, 0x0010)
	SOPClassUID       = NewTag(0x0008, 0x0016)
	SOPInstanceUID    = NewTag(0x0008, 0x0018)
	Modality          = NewTag(0x0008, 0x0060)
	PatientName       = NewTag(0x0010, 0x0010)
	PatientID         = NewTag(0x0010, 0x0020)
	StudyInstanceUID  = NewTag(0x0020, 0x000D)
	SeriesInstanceUID = NewTag(0x0020, 0x000E)
	PixelData         = NewTag(0x7FE0, 0x0010)
)

// Media storage directory tags.
var (
	DirectoryRecordSequence = NewTag(0x0004, 0x1220)
	DirectoryRecordType     = NewTag(0x0004, 0x1430)
	ReferencedFileID        = NewTag(0x0004, 0x1500)
)

// RT Plan tags.
var (
	RTPlanLabel                        = NewTag(0x300A, 0x0002)
	FractionGroupSequence              = NewTag(0x300A, 0x0070)
	BeamMeterset                       = NewTag(0x300A, 0x0086)
	BeamSequence                       = NewTag(0x300A, 0x00B0)
	BeamNumber                         = NewTag(0x300A, 0x00C0)
	BeamName                           = NewTag(0x300A, 0x00C2)
	FinalCumulativeMetersetWeight      = NewTag(0x300A, 0x010E)
	ControlPointSequence               = NewTag(0x300A, 0x0111)
	ControlPointIndex                  = NewTag(0x300A, 0x0112)
	BeamLimitingDevicePositionSequence = NewTag(0x300A, 0x011A)
	RTBeamLimitingDeviceType           = NewTag(0x300A, 0x00B8)
	LeafJawPositions                   = NewTag(0x300A, 0x011C)
	CumulativeMetersetWeight           = NewTag(0x300A, 0x0134)
	IonBeamSequence                    = NewTag(0x300A, 0x03A2)
	IonControlPointSequence            = NewTag(0x300A, 0x03A8)
	ReferencedBeamSequence             = NewTag(0x300C, 0x0004)
	ReferencedBeamNumber               = NewTag(0x300C, 0x0006)
)
