// Package kinematics implements two-wheel differential drive kinematics and wheel odometry.
package kinematics

import (
	"math"

	"github.com/pkg/errors"
)

// WheelSpeeds holds the linear velocity of each side of a differential drive in m/s.
type WheelSpeeds struct {
	Left  float64
	Right float64
}

// Desaturate scales both speeds down proportionally so neither exceeds maxSpeed.
func (ws WheelSpeeds) Desaturate(maxSpeed float64) WheelSpeeds {
	realMax := math.Max(math.Abs(ws.Left), math.Abs(ws.Right))
	if realMax <= maxSpeed || realMax == 0 {
		return ws
	}
	return WheelSpeeds{Left: ws.Left / realMax * maxSpeed, Right: ws.Right / realMax * maxSpeed}
}

// ChassisSpeeds is the body frame velocity of the robot: forward m/s and counter-clockwise
// rad/s.
type ChassisSpeeds struct {
	Linear  float64
	Angular float64
}

// DifferentialDrive converts between chassis and wheel velocities for a rigid body with
// the given track width.
type DifferentialDrive struct {
	trackWidth float64
}

// NewDifferentialDrive returns kinematics for a base whose wheels are trackWidth meters
// apart.
func NewDifferentialDrive(trackWidth float64) (DifferentialDrive, error) {
	if trackWidth <= 0 || math.IsNaN(trackWidth) || math.IsInf(trackWidth, 0) {
		return DifferentialDrive{}, errors.Errorf("track width must be a positive finite number, got %v", trackWidth)
	}
	return DifferentialDrive{trackWidth: trackWidth}, nil
}

// TrackWidth returns the distance between the wheels in meters.
func (dd DifferentialDrive) TrackWidth() float64 {
	return dd.trackWidth
}

// ToWheelSpeeds returns left = v - w*T/2, right = v + w*T/2.
func (dd DifferentialDrive) ToWheelSpeeds(speeds ChassisSpeeds) WheelSpeeds {
	half := speeds.Angular * dd.trackWidth / 2
	return WheelSpeeds{
		Left:  speeds.Linear - half,
		Right: speeds.Linear + half,
	}
}

// ToChassisSpeeds inverts ToWheelSpeeds.
func (dd DifferentialDrive) ToChassisSpeeds(ws WheelSpeeds) ChassisSpeeds {
	return ChassisSpeeds{
		Linear:  (ws.Left + ws.Right) / 2,
		Angular: (ws.Right - ws.Left) / dd.trackWidth,
	}
}
