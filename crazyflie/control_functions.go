package crazyflie

// HoverSetpointSend commands body-frame velocity at a fixed height.
func (cf *Crazyflie) HoverSetpointSend(vx, vy, yawrate, zDistance float32) error {
	return cf.PacketSendPriority(&ControlRequestHoverSetpoint{vx, vy, yawrate, zDistance})
}

func (cf *Crazyflie) StopSetpointSend() error {
	return cf.PacketSendPriority(&ControlRequestStopSetpoint{})
}

func (cf *Crazyflie) NotifySetpointStop(remainValidMillis uint32) error {
	return cf.PacketSendPriority(&ControlRequestNotifySetpointStop{remainValidMillis})
}

// ArmingRequest arms or disarms the motors; newer firmware refuses to fly
// unarmed.
func (cf *Crazyflie) ArmingRequest(arm bool) error {
	return cf.PacketSend(&PlatformRequestArming{arm})
}
